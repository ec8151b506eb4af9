package service

import (
	"strings"
	"testing"
	"time"

	"mealportal/internal/model"
)

func newTestComposer() ComposerService {
	return NewComposerService(nil)
}

func baseDraft() model.DraftDocument {
	return model.DraftDocument{
		Type:      model.TypeMeal,
		SubBidang: "Fasilitas Umum",
		JobTitle:  "Rapat Koordinasi",
		DropPoint: "Lobi Gedung B",
		PicName:   "Budi",
		PicPhone:  "0812000111",
		Groups:    map[string]model.EntityGroup{},
	}
}

func TestMealSlotBoundaries(t *testing.T) {
	cases := []struct {
		hour int
		want string
	}{
		{4, model.SlotSarapan},
		{7, model.SlotSarapan},
		{8, model.SlotMakanSiang},
		{13, model.SlotMakanSiang},
		{14, model.SlotMakanSore},
		{16, model.SlotMakanSore},
		{17, model.SlotMakanMalam},
		{18, model.SlotMakanMalam},
		{23, model.SlotMakanMalam},
		{0, model.SlotMakanMalam},
		{3, model.SlotMakanMalam},
	}
	for _, c := range cases {
		if got := MealSlotFor(c.hour); got != c.want {
			t.Errorf("MealSlotFor(%d) = %s, want %s", c.hour, got, c.want)
		}
	}
}

func TestSetEntityCountPadsAndTruncates(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.Groups[model.EntityPLNIP] = model.EntityGroup{
		Count: 2,
		Entries: []model.DraftEntry{
			{EmployeeName: "Andi", MenuItemID: "m1"},
			{EmployeeName: "Sari", MenuItemID: "m2"},
		},
	}

	grown := svc.SetEntityCount(doc, model.EntityPLNIP, 4)
	g := grown.Groups[model.EntityPLNIP]
	if g.Count != 4 || len(g.Entries) != 4 {
		t.Fatalf("expected 4 entries, got count=%d len=%d", g.Count, len(g.Entries))
	}
	if g.Entries[0].EmployeeName != "Andi" || g.Entries[1].EmployeeName != "Sari" {
		t.Error("existing entries must keep their order when growing")
	}
	if g.Entries[2].EmployeeName != "" || g.Entries[3].EmployeeName != "" {
		t.Error("padded entries must be empty")
	}

	shrunk := svc.SetEntityCount(grown, model.EntityPLNIP, 1)
	g = shrunk.Groups[model.EntityPLNIP]
	if g.Count != 1 || len(g.Entries) != 1 {
		t.Fatalf("expected 1 entry, got count=%d len=%d", g.Count, len(g.Entries))
	}
	if g.Entries[0].EmployeeName != "Andi" {
		t.Errorf("expected head entry to survive, got %q", g.Entries[0].EmployeeName)
	}

	// Input document must be untouched.
	if len(doc.Groups[model.EntityPLNIP].Entries) != 2 {
		t.Error("SetEntityCount mutated its input")
	}
}

func TestApplyAnonymousOverwritesNames(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.Groups[model.EntityIPS] = model.EntityGroup{
		Count: 2,
		Entries: []model.DraftEntry{
			{EmployeeName: "Joko", MenuItemID: "m1"},
			{EmployeeName: "", MenuItemID: "m2"},
		},
	}

	out := svc.ApplyAnonymous(doc, model.EntityIPS, true)
	for i, entry := range out.Groups[model.EntityIPS].Entries {
		if entry.EmployeeName != "Pegawai IPS" {
			t.Errorf("entry %d: expected placeholder name, got %q", i, entry.EmployeeName)
		}
	}
	if doc.Groups[model.EntityIPS].Entries[0].EmployeeName != "Joko" {
		t.Error("ApplyAnonymous mutated its input")
	}
}

func TestApplySyncSharesMenuSelection(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.Groups[model.EntityKOP] = model.EntityGroup{
		Count: 2,
		Entries: []model.DraftEntry{
			{EmployeeName: "A", MenuItemID: "m1"},
			{EmployeeName: "B", MenuItemID: "m2"},
		},
	}

	out := svc.ApplySync(doc, model.EntityKOP, true, "shared-menu")
	for i, entry := range out.Groups[model.EntityKOP].Entries {
		if entry.MenuItemID != "shared-menu" {
			t.Errorf("entry %d: expected shared menu, got %q", i, entry.MenuItemID)
		}
	}

	off := svc.ApplySync(out, model.EntityKOP, false, "")
	if off.Groups[model.EntityKOP].SyncMenuID != "" {
		t.Error("turning sync off must clear the shared menu id")
	}
}

func TestValidateReportsAllMissingFields(t *testing.T) {
	svc := newTestComposer()
	doc := model.DraftDocument{Groups: map[string]model.EntityGroup{}}

	verr := svc.Validate(doc)
	if verr == nil {
		t.Fatal("expected validation error for empty draft")
	}

	for _, want := range []string{"sub_bidang", "job_title", "drop_point", "pic_name", "pic_phone", "employee_orders"} {
		found := false
		for _, f := range verr.Fields {
			if f == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected missing field %q in %v", want, verr.Fields)
		}
	}
}

func TestValidateFlagsIncompleteEntries(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.Groups[model.EntityPLNIP] = model.EntityGroup{
		Count: 2,
		Entries: []model.DraftEntry{
			{EmployeeName: "Andi", MenuItemID: "m1"},
			{EmployeeName: "", MenuItemID: ""},
		},
	}

	verr := svc.Validate(doc)
	if verr == nil {
		t.Fatal("expected validation error for incomplete entry")
	}
	joined := strings.Join(verr.Fields, " ")
	if !strings.Contains(joined, "entries[1].employee_name") || !strings.Contains(joined, "entries[1].menu_item_id") {
		t.Errorf("expected entry-level fields, got %v", verr.Fields)
	}
}

func TestToSubmissionFlattensActiveGroupsOnly(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.Groups[model.EntityPLNIP] = model.EntityGroup{
		Count: 2,
		Entries: []model.DraftEntry{
			{EmployeeName: "Andi", MenuItemID: "m1", Notes: "tanpa sambal"},
			{EmployeeName: "Sari", MenuItemID: "m2"},
		},
	}
	doc.Groups[model.EntityIPS] = model.EntityGroup{Count: 0}

	payload, err := svc.ToSubmission(doc, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payload.EmployeeOrders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(payload.EmployeeOrders))
	}
	first := payload.EmployeeOrders[0]
	if first.EmployeeName != "Andi" || first.Entity != model.EntityPLNIP || first.MenuItemID != "m1" || first.Notes != "tanpa sambal" {
		t.Errorf("unexpected first order: %+v", first)
	}
	if payload.EmployeeOrders[1].EmployeeName != "Sari" {
		t.Error("orders must preserve entry order")
	}
}

func TestToSubmissionPreservesEntityDisplayOrder(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.Groups[model.EntityMITRA] = model.EntityGroup{
		Count:   1,
		Entries: []model.DraftEntry{{EmployeeName: "Tamu", MenuItemID: "m3"}},
	}
	doc.Groups[model.EntityPLNIP] = model.EntityGroup{
		Count:   1,
		Entries: []model.DraftEntry{{EmployeeName: "Andi", MenuItemID: "m1"}},
	}

	payload, err := svc.ToSubmission(doc, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.EmployeeOrders[0].Entity != model.EntityPLNIP || payload.EmployeeOrders[1].Entity != model.EntityMITRA {
		t.Errorf("expected PLNIP before MITRA, got %+v", payload.EmployeeOrders)
	}
}

func TestToSubmissionRejectsInvalidDraft(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.PicName = ""

	if _, err := svc.ToSubmission(doc, time.Now()); err == nil {
		t.Fatal("expected validation error to block submission")
	}
}

func TestToSubmissionDefaultsTypeAndDate(t *testing.T) {
	svc := newTestComposer()
	doc := baseDraft()
	doc.Type = ""
	doc.Groups[model.EntityPLNIP] = model.EntityGroup{
		Count:   1,
		Entries: []model.DraftEntry{{EmployeeName: "Andi", MenuItemID: "m1"}},
	}

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)
	payload, err := svc.ToSubmission(doc, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Type != model.TypeMeal {
		t.Errorf("expected default MEAL type, got %s", payload.Type)
	}
	wantDate := time.Date(2025, 3, 10, 14, 0, 0, 0, time.Local)
	if !payload.RequiredDate.Equal(wantDate) {
		t.Errorf("expected default required date %v (next slot start), got %v", wantDate, payload.RequiredDate)
	}
}

func TestNextSlotTime(t *testing.T) {
	cases := []struct {
		hour     int
		wantDay  int
		wantHour int
	}{
		{2, 10, 4},   // before Sarapan
		{6, 10, 8},   // during Sarapan -> Makan Siang
		{9, 10, 14},  // during Makan Siang -> Makan Sore
		{15, 10, 17}, // during Makan Sore -> Makan Malam
		{20, 11, 4},  // during Makan Malam -> tomorrow's Sarapan
	}
	for _, c := range cases {
		now := time.Date(2025, 3, 10, c.hour, 30, 0, 0, time.Local)
		got := NextSlotTime(now)
		want := time.Date(2025, 3, c.wantDay, c.wantHour, 0, 0, 0, time.Local)
		if !got.Equal(want) {
			t.Errorf("NextSlotTime(hour %d) = %v, want %v", c.hour, got, want)
		}
	}
}
