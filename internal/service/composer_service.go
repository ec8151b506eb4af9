package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mealportal/internal/model"
	"mealportal/internal/repository"
)

// Meal-slot hour boundaries. A required date falls into the slot whose
// half-open hour range contains its hour of day; Makan Malam wraps past
// midnight.
const (
	slotSarapanStart    = 4
	slotMakanSiangStart = 8
	slotMakanSoreStart  = 14
	slotMakanMalamStart = 17
)

// MealSlotFor buckets an hour of day (0-23) into a meal slot:
// Sarapan [04,08), Makan Siang [08,14), Makan Sore [14,17),
// Makan Malam [17,04).
func MealSlotFor(hour int) string {
	switch {
	case hour >= slotSarapanStart && hour < slotMakanSiangStart:
		return model.SlotSarapan
	case hour >= slotMakanSiangStart && hour < slotMakanSoreStart:
		return model.SlotMakanSiang
	case hour >= slotMakanSoreStart && hour < slotMakanMalamStart:
		return model.SlotMakanSore
	default:
		return model.SlotMakanMalam
	}
}

// NextSlotTime returns the start of the first meal slot after now, used as
// the default required date when the draft carries none. After the Makan
// Malam start the next slot is tomorrow's Sarapan.
func NextSlotTime(now time.Time) time.Time {
	starts := []int{slotSarapanStart, slotMakanSiangStart, slotMakanSoreStart, slotMakanMalamStart}
	for _, h := range starts {
		if now.Hour() < h {
			return time.Date(now.Year(), now.Month(), now.Day(), h, 0, 0, 0, now.Location())
		}
	}
	next := now.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), slotSarapanStart, 0, 0, 0, now.Location())
}

// EmployeeOrderInput is one flattened (employee, menu item) pair produced by
// ToSubmission, always quantity 1 in this flow.
type EmployeeOrderInput struct {
	EmployeeName string `json:"employee_name"`
	Entity       string `json:"entity"`
	MenuItemID   string `json:"menu_item_id"`
	Notes        string `json:"notes,omitempty"`
}

// SubmissionPayload is the canonical create-request payload assembled from a
// draft.
type SubmissionPayload struct {
	Type           string               `json:"type"`
	SubBidang      string               `json:"sub_bidang"`
	JobTitle       string               `json:"job_title"`
	DropPoint      string               `json:"drop_point"`
	PicName        string               `json:"pic_name"`
	PicPhone       string               `json:"pic_phone"`
	RequiredDate   time.Time            `json:"required_date"`
	EmployeeOrders []EmployeeOrderInput `json:"employee_orders"`
}

// ComposerService assembles per-entity employee entries into one canonical
// submission. All draft transformations are pure: they return a new document
// and never mutate their input, so a validation failure or an abandoned edit
// leaves nothing behind.
type ComposerService interface {
	SetEntityCount(doc model.DraftDocument, entity string, n int) model.DraftDocument
	ApplyAnonymous(doc model.DraftDocument, entity string, on bool) model.DraftDocument
	ApplySync(doc model.DraftDocument, entity string, on bool, menuItemID string) model.DraftDocument
	Validate(doc model.DraftDocument) *model.ValidationError
	ToSubmission(doc model.DraftDocument, now time.Time) (*SubmissionPayload, error)

	SaveDraft(ctx context.Context, ownerKey string, doc model.DraftDocument) error
	LoadDraft(ctx context.Context, ownerKey string) (*model.DraftDocument, error)
	DeleteDraft(ctx context.Context, ownerKey string) error
}

type composerService struct {
	drafts repository.DraftRepository
}

func NewComposerService(drafts repository.DraftRepository) ComposerService {
	return &composerService{drafts: drafts}
}

// cloneGroup deep-copies an entity group so transformations stay pure.
func cloneGroup(g model.EntityGroup) model.EntityGroup {
	out := g
	out.Entries = make([]model.DraftEntry, len(g.Entries))
	copy(out.Entries, g.Entries)
	return out
}

func cloneDoc(doc model.DraftDocument) model.DraftDocument {
	out := doc
	out.Groups = make(map[string]model.EntityGroup, len(doc.Groups))
	for entity, g := range doc.Groups {
		out.Groups[entity] = cloneGroup(g)
	}
	return out
}

// applyToggles re-derives entry names and menu selections from the group's
// toggles. Anonymous and sync are independent: either, both or neither may
// be active.
func applyToggles(entity string, g model.EntityGroup) model.EntityGroup {
	for i := range g.Entries {
		if g.Anonymous {
			g.Entries[i].EmployeeName = anonymousName(entity)
		}
		if g.SyncMenu {
			g.Entries[i].MenuItemID = g.SyncMenuID
		}
	}
	return g
}

func anonymousName(entity string) string {
	return "Pegawai " + entity
}

// SetEntityCount resizes an entity's entry list to n: grows by padding with
// empty entries, shrinks by dropping from the tail. Filled entries keep
// their order. Shrinking silently discards the dropped tail; there is no
// confirmation step at this layer.
func (s *composerService) SetEntityCount(doc model.DraftDocument, entity string, n int) model.DraftDocument {
	if n < 0 {
		n = 0
	}

	out := cloneDoc(doc)
	g := out.Groups[entity]

	switch {
	case n < len(g.Entries):
		g.Entries = g.Entries[:n]
	case n > len(g.Entries):
		padded := make([]model.DraftEntry, n)
		copy(padded, g.Entries)
		g.Entries = padded
	}
	g.Count = n

	out.Groups[entity] = applyToggles(entity, g)
	return out
}

// ApplyAnonymous toggles placeholder naming for an entity group. Turning it
// on overwrites every entry name with "Pegawai {entity}"; turning it off
// leaves the placeholders in place for the user to edit.
func (s *composerService) ApplyAnonymous(doc model.DraftDocument, entity string, on bool) model.DraftDocument {
	out := cloneDoc(doc)
	g := out.Groups[entity]
	g.Anonymous = on
	out.Groups[entity] = applyToggles(entity, g)
	return out
}

// ApplySync toggles the shared menu selection for an entity group.
func (s *composerService) ApplySync(doc model.DraftDocument, entity string, on bool, menuItemID string) model.DraftDocument {
	out := cloneDoc(doc)
	g := out.Groups[entity]
	g.SyncMenu = on
	if on {
		g.SyncMenuID = menuItemID
	} else {
		g.SyncMenuID = ""
	}
	out.Groups[entity] = applyToggles(entity, g)
	return out
}

// Validate reports every missing field at once. It returns nil when the
// draft is submittable; it never fails hard on missing data, only
// submission is blocked.
func (s *composerService) Validate(doc model.DraftDocument) *model.ValidationError {
	var missing []string

	if doc.SubBidang == "" {
		missing = append(missing, "sub_bidang")
	}
	if doc.JobTitle == "" {
		missing = append(missing, "job_title")
	}
	if doc.DropPoint == "" {
		missing = append(missing, "drop_point")
	}
	if doc.PicName == "" {
		missing = append(missing, "pic_name")
	}
	if doc.PicPhone == "" {
		missing = append(missing, "pic_phone")
	}

	anyActive := false
	for _, entity := range model.Entities {
		g, ok := doc.Groups[entity]
		if !ok || g.Count == 0 {
			continue
		}
		anyActive = true
		for i, entry := range g.Entries {
			if entry.EmployeeName == "" {
				missing = append(missing, fmt.Sprintf("groups.%s.entries[%d].employee_name", entity, i))
			}
			if entry.MenuItemID == "" {
				missing = append(missing, fmt.Sprintf("groups.%s.entries[%d].menu_item_id", entity, i))
			}
		}
	}
	if !anyActive {
		missing = append(missing, "employee_orders")
	}

	if len(missing) > 0 {
		return &model.ValidationError{Fields: missing}
	}
	return nil
}

// ToSubmission flattens the draft into the canonical employeeOrders shape:
// one element per (employee, menu item) pair, entity tag and note preserved,
// entity groups emitted in the fixed display order and entries in their
// submission order. The draft must validate first.
func (s *composerService) ToSubmission(doc model.DraftDocument, now time.Time) (*SubmissionPayload, error) {
	if verr := s.Validate(doc); verr != nil {
		return nil, verr
	}

	requiredDate := NextSlotTime(now)
	if doc.RequiredDate != nil {
		requiredDate = *doc.RequiredDate
	}

	requestType := doc.Type
	if requestType == "" {
		requestType = model.TypeMeal
	}

	payload := &SubmissionPayload{
		Type:         requestType,
		SubBidang:    doc.SubBidang,
		JobTitle:     doc.JobTitle,
		DropPoint:    doc.DropPoint,
		PicName:      doc.PicName,
		PicPhone:     doc.PicPhone,
		RequiredDate: requiredDate,
	}

	for _, entity := range model.Entities {
		g, ok := doc.Groups[entity]
		if !ok {
			continue
		}
		for _, entry := range g.Entries {
			payload.EmployeeOrders = append(payload.EmployeeOrders, EmployeeOrderInput{
				EmployeeName: entry.EmployeeName,
				Entity:       entity,
				MenuItemID:   entry.MenuItemID,
				Notes:        entry.Notes,
			})
		}
	}

	return payload, nil
}

func (s *composerService) SaveDraft(ctx context.Context, ownerKey string, doc model.DraftDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize draft: %w", err)
	}
	return s.drafts.Save(ctx, &model.ComposerDraft{
		OwnerKey: ownerKey,
		Payload:  string(payload),
	})
}

func (s *composerService) LoadDraft(ctx context.Context, ownerKey string) (*model.DraftDocument, error) {
	draft, err := s.drafts.FindByOwner(ctx, ownerKey)
	if err != nil {
		return nil, err
	}

	var doc model.DraftDocument
	if err := json.Unmarshal([]byte(draft.Payload), &doc); err != nil {
		return nil, fmt.Errorf("failed to restore draft: %w", err)
	}
	return &doc, nil
}

func (s *composerService) DeleteDraft(ctx context.Context, ownerKey string) error {
	return s.drafts.DeleteByOwner(ctx, ownerKey)
}
