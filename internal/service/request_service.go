package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mealportal/internal/model"
	"mealportal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies who is driving a transition: either a magic-link token
// (external supervisor/kitchen visitor) or an authenticated portal session.
// Exactly one of Token / SessionRole is expected to be set.
type Actor struct {
	Token       string
	SessionRole string
	UserID      *uuid.UUID
	Name        string
}

// RespondDTO is the payload of the magic-link respond call.
type RespondDTO struct {
	Approved   bool   `json:"approved"`
	Note       string `json:"note"`
	ProofImage []byte `json:"proof_image,omitempty"` // base64-decoded by binding
}

// EmployeeOrderResponse mirrors one order line for API consumers.
type EmployeeOrderResponse struct {
	EmployeeName string `json:"employee_name"`
	Entity       string `json:"entity"`
	MenuItemID   string `json:"menu_item_id"`
	MenuItemName string `json:"menu_item_name,omitempty"`
	Quantity     int    `json:"quantity"`
	Notes        string `json:"notes,omitempty"`
}

// RequestResponse is the API shape of a service request. Token values are
// never included; magic links travel only through the notification channel.
type RequestResponse struct {
	ID              string                  `json:"id"`
	RequestCode     string                  `json:"request_code"`
	Type            string                  `json:"type"`
	Status          string                  `json:"status"`
	RequestDate     string                  `json:"request_date"`
	RequiredDate    string                  `json:"required_date"`
	MealSlot        string                  `json:"meal_slot"`
	DropPoint       string                  `json:"drop_point"`
	PicName         string                  `json:"pic_name"`
	PicPhone        string                  `json:"pic_phone"`
	SubBidang       string                  `json:"sub_bidang"`
	JobTitle        string                  `json:"job_title,omitempty"`
	SupervisorName  string                  `json:"supervisor_name"`
	SupervisorPhone string                  `json:"supervisor_phone"`
	EstimatedCost   string                  `json:"estimated_cost"`
	RejectionNote   string                  `json:"rejection_note,omitempty"`
	EmployeeOrders  []EmployeeOrderResponse `json:"employee_orders"`
	HasProof        bool                    `json:"has_proof"`
	ProofURL        string                  `json:"proof_url,omitempty"`
	CompletedAt     *string                 `json:"completed_at,omitempty"`
	CreatedAt       string                  `json:"created_at"`
}

// RequestService is the authoritative lifecycle controller. It is the only
// writer of request status; every transition runs in one transaction holding
// the request row lock, so concurrent approvals (token vs admin session)
// serialize and exactly one wins.
type RequestService interface {
	Create(ctx context.Context, payload SubmissionPayload, createdBy *uuid.UUID) (*RequestResponse, error)
	GetByID(ctx context.Context, id string) (*RequestResponse, error)
	// VerifyToken resolves a magic link for the landing page: read-only, the
	// token is not consumed.
	VerifyToken(ctx context.Context, token string) (*RequestResponse, string, error)
	// Respond applies approve/reject (and, at IN_PROGRESS, deliver) on
	// behalf of the actor. Tokens are consumed atomically before the status
	// mutation.
	Respond(ctx context.Context, requestID string, actor Actor, dto RespondDTO) (*RequestResponse, error)
	// Process moves PENDING_KITCHEN to IN_PROGRESS. Idempotent: calling it
	// again while IN_PROGRESS is a no-op. Kitchen tokens are validated but
	// not consumed here; the token is spent by reject or deliver.
	Process(ctx context.Context, requestID string, actor Actor) (*RequestResponse, error)
	// Deliver completes the request. Fails with a validation error when no
	// delivery proof is attached; the status is left untouched in that case.
	Deliver(ctx context.Context, requestID string, actor Actor, proofImage []byte, note string) (*RequestResponse, error)
	Cancel(ctx context.Context, requestID string, actor Actor, note string) (*RequestResponse, error)
	// Monitoring is the lock-free snapshot read used by dashboards. It may
	// be marginally stale; clients re-poll.
	Monitoring(ctx context.Context, filter repository.RequestFilter) ([]RequestResponse, int64, error)
}

type requestService struct {
	txManager repository.TransactionManager
	requests  repository.RequestRepository
	tokens    TokenRegistry
	menu      repository.MenuRepository
	directory repository.DirectoryRepository
	delivery  DeliveryService
	audit     repository.AuditRepository
	notifier  Notifier
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewRequestService(
	txManager repository.TransactionManager,
	requests repository.RequestRepository,
	tokens TokenRegistry,
	menu repository.MenuRepository,
	directory repository.DirectoryRepository,
	delivery DeliveryService,
	audit repository.AuditRepository,
	notifier Notifier,
	tokenTTL time.Duration,
) RequestService {
	return &requestService{
		txManager: txManager,
		requests:  requests,
		tokens:    tokens,
		menu:      menu,
		directory: directory,
		delivery:  delivery,
		audit:     audit,
		notifier:  notifier,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Create validates the submission, resolves the supervisor, prices the
// order, stores the request in its first pending stage and issues the first
// magic link, all in one transaction.
func (s *requestService) Create(ctx context.Context, payload SubmissionPayload, createdBy *uuid.UUID) (*RequestResponse, error) {
	if len(payload.EmployeeOrders) == 0 {
		return nil, model.NewValidationError("employee_orders")
	}

	supervisor, err := s.directory.FindSubBidangByName(ctx, payload.SubBidang)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("unknown sub-bidang %q: %w", payload.SubBidang, err)
		}
		return nil, err
	}

	menuIDs := make([]uuid.UUID, 0, len(payload.EmployeeOrders))
	for _, entry := range payload.EmployeeOrders {
		id, parseErr := uuid.Parse(entry.MenuItemID)
		if parseErr != nil {
			return nil, model.NewValidationError("menu_item_id")
		}
		menuIDs = append(menuIDs, id)
	}

	items, err := s.menu.FindByIDs(ctx, menuIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	}
	itemsByID := make(map[uuid.UUID]model.MenuItem, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}

	estimatedCost := decimal.Zero
	orders := make([]model.EmployeeOrder, 0, len(payload.EmployeeOrders))
	for i, entry := range payload.EmployeeOrders {
		item, ok := itemsByID[menuIDs[i]]
		if !ok || !item.IsAvailable {
			return nil, model.NewValidationError(fmt.Sprintf("employee_orders[%d].menu_item_id", i))
		}
		estimatedCost = estimatedCost.Add(item.Price)
		orders = append(orders, model.EmployeeOrder{
			EmployeeName: entry.EmployeeName,
			Entity:       entry.Entity,
			Position:     i,
			Items: []model.OrderItem{{
				MenuItemID: item.ID,
				Quantity:   1,
				Notes:      entry.Notes,
			}},
		})
	}

	plan := model.StagePlanFor(payload.Type)
	now := s.now()

	request := &model.ServiceRequest{
		Type:            payload.Type,
		Status:          plan[0],
		RequestDate:     now,
		RequiredDate:    payload.RequiredDate,
		MealSlot:        MealSlotFor(payload.RequiredDate.Hour()),
		DropPoint:       payload.DropPoint,
		PicName:         payload.PicName,
		PicPhone:        payload.PicPhone,
		SubBidang:       payload.SubBidang,
		JobTitle:        payload.JobTitle,
		SupervisorName:  supervisor.SupervisorName,
		SupervisorPhone: supervisor.SupervisorPhone,
		EstimatedCost:   estimatedCost,
		CreatedBy:       createdBy,
		EmployeeOrders:  orders,
	}

	var firstToken *model.ApprovalToken
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		code, codeErr := s.generateRequestCode(txCtx)
		if codeErr != nil {
			return codeErr
		}
		request.RequestCode = code

		if createErr := s.requests.Create(txCtx, request); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}

		role := model.RequiredRoleFor(request.Status)
		token, issueErr := s.tokens.Issue(txCtx, request.ID, role, s.tokenTTL)
		if issueErr != nil {
			return issueErr
		}
		firstToken = token

		return s.logAudit(txCtx, createdBy, model.ActionCreateRequest, request, map[string]interface{}{
			"type":       request.Type,
			"sub_bidang": request.SubBidang,
			"orders":     len(orders),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(StageEvent{
		Event:        "REQUEST_CREATED",
		RequestID:    request.ID.String(),
		RequestCode:  request.RequestCode,
		Type:         request.Type,
		Status:       request.Status,
		PicName:      request.PicName,
		SubBidang:    request.SubBidang,
		ApprovalLink: s.tokens.MagicLink(firstToken.Token),
		OccurredAt:   s.now(),
	})

	return s.reload(ctx, request.ID)
}

func (s *requestService) GetByID(ctx context.Context, id string) (*RequestResponse, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	return s.reload(ctx, requestID)
}

func (s *requestService) VerifyToken(ctx context.Context, token string) (*RequestResponse, string, error) {
	t, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.reload(ctx, t.RequestID)
	if err != nil {
		return nil, "", err
	}
	return resp, t.Type, nil
}

func (s *requestService) Respond(ctx context.Context, requestID string, actor Actor, dto RespondDTO) (*RequestResponse, error) {
	id, err := s.resolveRequestID(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	// An approving respond means different things per stage: at IN_PROGRESS
	// it is a delivery, at PENDING_KITCHEN it starts processing without
	// spending the kitchen token (the same link must still drive deliver or
	// reject later). Everywhere else it is a stage approval.
	current, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dto.Approved {
		switch current.Status {
		case model.StatusInProgress:
			return s.Deliver(ctx, id.String(), actor, dto.ProofImage, dto.Note)
		case model.StatusPendingKitchen:
			return s.Process(ctx, id.String(), actor)
		}
	}

	action := model.ActionApprove
	if !dto.Approved {
		action = model.ActionReject
	}
	return s.transition(ctx, id, actor, action, dto.Note, true, nil)
}

func (s *requestService) Process(ctx context.Context, requestID string, actor Actor) (*RequestResponse, error) {
	id, err := s.resolveRequestID(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	// The kitchen token survives process; it is spent by reject or deliver.
	// A repost while already IN_PROGRESS authorizes, then no-ops.
	return s.transition(ctx, id, actor, model.ActionProcess, "", false, nil)
}

func (s *requestService) Deliver(ctx context.Context, requestID string, actor Actor, proofImage []byte, note string) (*RequestResponse, error) {
	id, err := s.resolveRequestID(ctx, requestID, actor)
	if err != nil {
		return nil, err
	}

	// The proof is captured inside the transition, after authorization and
	// the legality check, so a refused or repeated deliver can never touch
	// a stored proof. Once the request completes the row is final.
	return s.transition(ctx, id, actor, model.ActionDeliver, note, true, func(txCtx context.Context) error {
		if len(proofImage) > 0 {
			if _, err := s.delivery.Capture(txCtx, id, proofImage, actor.Name, s.now()); err != nil {
				return err
			}
		}
		if _, err := s.delivery.GetProof(txCtx, id); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewValidationError("proof_image")
			}
			return err
		}
		return nil
	})
}

func (s *requestService) Cancel(ctx context.Context, requestID string, actor Actor, note string) (*RequestResponse, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, model.ErrNotFound
	}

	return s.transition(ctx, id, actor, model.ActionCancel, note, true, nil)
}

func (s *requestService) Monitoring(ctx context.Context, filter repository.RequestFilter) ([]RequestResponse, int64, error) {
	requests, total, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		result = append(result, *toRequestResponse(&requests[i]))
	}
	return result, total, nil
}

// transition is the single write path for status. Inside one transaction it
// locks the request row, checks the authorization table, consumes the token
// (when consumeToken is set), runs the action's beforeUpdate hook, applies
// the edge, issues the next stage's token and writes the audit row. Any
// failure rolls the whole thing back, side writes from the hook included.
func (s *requestService) transition(ctx context.Context, id uuid.UUID, actor Actor, action, note string, consumeToken bool, beforeUpdate func(txCtx context.Context) error) (*RequestResponse, error) {
	var nextToken *model.ApprovalToken
	var request *model.ServiceRequest

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, lockErr := s.requests.FindByIDForUpdate(txCtx, id)
		if lockErr != nil {
			return lockErr
		}
		request = req

		role, authErr := s.authorize(txCtx, req, actor, action, consumeToken)
		if authErr != nil {
			return authErr
		}

		next, transErr := model.NextStatus(req.Type, req.Status, action)
		if transErr != nil {
			return transErr
		}

		if next == req.Status {
			return nil // idempotent process
		}

		if beforeUpdate != nil {
			if hookErr := beforeUpdate(txCtx); hookErr != nil {
				return hookErr
			}
		}

		var completedAt *time.Time
		if next == model.StatusCompleted {
			now := s.now()
			completedAt = &now
		}
		rejectionNote := ""
		if action == model.ActionReject || action == model.ActionCancel {
			rejectionNote = note
		}

		if updateErr := s.requests.UpdateStatus(txCtx, req.ID, next, rejectionNote, completedAt); updateErr != nil {
			return fmt.Errorf("failed to update request status: %w", updateErr)
		}
		prev := req.Status
		req.Status = next
		req.CompletedAt = completedAt

		// A stage is never re-entered once left, so this is the stage's only
		// token issuance over the request's lifetime.
		if model.IsPendingStage(next) {
			token, issueErr := s.tokens.Issue(txCtx, req.ID, model.RequiredRoleFor(next), s.tokenTTL)
			if issueErr != nil {
				return issueErr
			}
			nextToken = token
		}

		return s.logAudit(txCtx, actor.UserID, auditActionFor(action), req, map[string]interface{}{
			"from": prev,
			"to":   next,
			"role": role,
			"note": note,
		})
	})
	if err != nil {
		return nil, err
	}

	event := StageEvent{
		Event:       "STAGE_CHANGED",
		RequestID:   request.ID.String(),
		RequestCode: request.RequestCode,
		Type:        request.Type,
		Status:      request.Status,
		PicName:     request.PicName,
		SubBidang:   request.SubBidang,
		OccurredAt:  s.now(),
	}
	if nextToken != nil {
		event.ApprovalLink = s.tokens.MagicLink(nextToken.Token)
	}
	s.notifier.Notify(event)

	return s.reload(ctx, id)
}

// authorize resolves the actor's authority for the action against the
// (status, action) table. Token actors additionally have their token
// checked against the request and, when consumeToken is set, spent. The
// consume happens before the status mutation and inside the same
// transaction, so link replay and double-submission cannot both win.
func (s *requestService) authorize(ctx context.Context, req *model.ServiceRequest, actor Actor, action string, consumeToken bool) (string, error) {
	var role string

	if actor.Token != "" {
		t, err := s.tokens.Validate(ctx, actor.Token)
		if err != nil {
			return "", err
		}
		if t.RequestID != req.ID {
			return "", model.ErrTokenInvalid
		}
		if t.Type != model.RequiredRoleFor(req.Status) {
			return "", &model.TransitionError{Status: req.Status, Action: action, Role: t.Type}
		}
		role = t.Type

		if consumeToken {
			if _, err := s.tokens.Consume(ctx, actor.Token); err != nil {
				return "", err
			}
		}
	} else {
		role = model.AuthorityForSessionRole(actor.SessionRole)
		if role == "" {
			// The requester may withdraw their own request even without
			// stage authority.
			if action == model.ActionCancel && actor.UserID != nil &&
				req.CreatedBy != nil && *req.CreatedBy == *actor.UserID {
				role = model.RoleRequester
			} else {
				return "", &model.TransitionError{Status: req.Status, Action: action, Role: actor.SessionRole}
			}
		}
	}

	if !model.RoleMayAct(req.Status, action, role) {
		return "", &model.TransitionError{Status: req.Status, Action: action, Role: role}
	}
	return role, nil
}

// resolveRequestID accepts either an explicit id or, for magic-link actors,
// derives the request from the token itself.
func (s *requestService) resolveRequestID(ctx context.Context, requestID string, actor Actor) (uuid.UUID, error) {
	if requestID != "" {
		id, err := uuid.Parse(requestID)
		if err != nil {
			return uuid.Nil, model.ErrNotFound
		}
		return id, nil
	}
	if actor.Token == "" {
		return uuid.Nil, model.ErrNotFound
	}
	t, err := s.tokens.Validate(ctx, actor.Token)
	if err != nil {
		return uuid.Nil, err
	}
	return t.RequestID, nil
}

func (s *requestService) generateRequestCode(ctx context.Context) (string, error) {
	prefix := "REQ-" + s.now().Format("20060102") + "-"
	count, err := s.requests.CountByDayPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to generate request code: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *requestService) logAudit(ctx context.Context, userID *uuid.UUID, action string, req *model.ServiceRequest, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	entry := &model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   req.ID.String(),
		EntityName: req.RequestCode,
		Details:    string(payload),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *requestService) reload(ctx context.Context, id uuid.UUID) (*RequestResponse, error) {
	req, err := s.requests.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequestResponse(req), nil
}

func auditActionFor(action string) string {
	switch action {
	case model.ActionApprove:
		return model.ActionApproveRequest
	case model.ActionReject:
		return model.ActionRejectRequest
	case model.ActionProcess:
		return model.ActionProcessRequest
	case model.ActionDeliver:
		return model.ActionDeliverRequest
	case model.ActionCancel:
		return model.ActionCancelRequest
	}
	return action
}

func toRequestResponse(req *model.ServiceRequest) *RequestResponse {
	resp := &RequestResponse{
		ID:              req.ID.String(),
		RequestCode:     req.RequestCode,
		Type:            req.Type,
		Status:          req.Status,
		RequestDate:     req.RequestDate.Format(time.RFC3339),
		RequiredDate:    req.RequiredDate.Format(time.RFC3339),
		MealSlot:        req.MealSlot,
		DropPoint:       req.DropPoint,
		PicName:         req.PicName,
		PicPhone:        req.PicPhone,
		SubBidang:       req.SubBidang,
		JobTitle:        req.JobTitle,
		SupervisorName:  req.SupervisorName,
		SupervisorPhone: req.SupervisorPhone,
		EstimatedCost:   req.EstimatedCost.StringFixed(2),
		RejectionNote:   req.RejectionNote,
		CreatedAt:       req.CreatedAt.Format(time.RFC3339),
	}

	for _, order := range req.EmployeeOrders {
		for _, item := range order.Items {
			resp.EmployeeOrders = append(resp.EmployeeOrders, EmployeeOrderResponse{
				EmployeeName: order.EmployeeName,
				Entity:       order.Entity,
				MenuItemID:   item.MenuItemID.String(),
				MenuItemName: item.MenuItem.Name,
				Quantity:     item.Quantity,
				Notes:        item.Notes,
			})
		}
	}

	if req.Proof != nil {
		resp.HasProof = true
		resp.ProofURL = req.Proof.PhotoURL
	}
	if req.CompletedAt != nil {
		completed := req.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &completed
	}

	return resp
}
