package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"mealportal/internal/model"
	"mealportal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ---- fakes ----

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*model.ServiceRequest
	proofs   *fakeProofRepo // relation source for FindByIDWithRelations
}

func newFakeRequestRepo(proofs *fakeProofRepo) *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[uuid.UUID]*model.ServiceRequest{}, proofs: proofs}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *model.ServiceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now()
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) find(id uuid.UUID) (*model.ServiceRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *req
	return &cp, nil
}

func (f *fakeRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(id)
}

func (f *fakeRequestRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(id)
}

func (f *fakeRequestRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	f.mu.Lock()
	req, err := f.find(id)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if proof, proofErr := f.proofs.FindByRequestID(ctx, id); proofErr == nil {
		req.Proof = proof
	}
	return req, nil
}

func (f *fakeRequestRepo) List(_ context.Context, filter repository.RequestFilter) ([]model.ServiceRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ServiceRequest
	for _, req := range f.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Type != "" && req.Type != filter.Type {
			continue
		}
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, id uuid.UUID, status, rejectionNote string, completedAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.requests[id]
	if !ok {
		return model.ErrNotFound
	}
	req.Status = status
	if rejectionNote != "" {
		req.RejectionNote = rejectionNote
	}
	req.CompletedAt = completedAt
	return nil
}

func (f *fakeRequestRepo) CountByDayPrefix(_ context.Context, codePrefix string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, req := range f.requests {
		if strings.HasPrefix(req.RequestCode, codePrefix) {
			n++
		}
	}
	return n, nil
}

type fakeMenuRepo struct {
	items map[uuid.UUID]model.MenuItem
}

func (f *fakeMenuRepo) Create(_ context.Context, item *model.MenuItem) error { return nil }
func (f *fakeMenuRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MenuItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &item, nil
}
func (f *fakeMenuRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.MenuItem, error) {
	var out []model.MenuItem
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}
func (f *fakeMenuRepo) List(_ context.Context, _ string, _ bool, _, _ int) ([]model.MenuItem, int64, error) {
	return nil, 0, nil
}
func (f *fakeMenuRepo) Update(_ context.Context, _ *model.MenuItem) error { return nil }
func (f *fakeMenuRepo) Delete(_ context.Context, _ uuid.UUID) error       { return nil }

type fakeDirectoryRepo struct {
	units map[string]*model.SubBidang
}

func (f *fakeDirectoryRepo) CreateSubBidang(_ context.Context, _ *model.SubBidang) error { return nil }
func (f *fakeDirectoryRepo) FindSubBidangByID(_ context.Context, _ uuid.UUID) (*model.SubBidang, error) {
	return nil, model.ErrNotFound
}
func (f *fakeDirectoryRepo) FindSubBidangByName(_ context.Context, name string) (*model.SubBidang, error) {
	sb, ok := f.units[name]
	if !ok {
		return nil, model.ErrNotFound
	}
	return sb, nil
}
func (f *fakeDirectoryRepo) ListSubBidang(_ context.Context, _, _ int) ([]model.SubBidang, int64, error) {
	return nil, 0, nil
}
func (f *fakeDirectoryRepo) UpdateSubBidang(_ context.Context, _ *model.SubBidang) error { return nil }
func (f *fakeDirectoryRepo) DeleteSubBidang(_ context.Context, _ uuid.UUID) error        { return nil }
func (f *fakeDirectoryRepo) CreateEmployee(_ context.Context, _ *model.Employee) error   { return nil }
func (f *fakeDirectoryRepo) FindEmployeeByID(_ context.Context, _ uuid.UUID) (*model.Employee, error) {
	return nil, model.ErrNotFound
}
func (f *fakeDirectoryRepo) ListEmployees(_ context.Context, _, _ string, _, _ int) ([]model.Employee, int64, error) {
	return nil, 0, nil
}
func (f *fakeDirectoryRepo) UpdateEmployee(_ context.Context, _ *model.Employee) error { return nil }
func (f *fakeDirectoryRepo) DeleteEmployee(_ context.Context, _ uuid.UUID) error       { return nil }

type fakeProofRepo struct {
	mu     sync.Mutex
	proofs map[uuid.UUID]*model.DeliveryProof
}

func newFakeProofRepo() *fakeProofRepo {
	return &fakeProofRepo{proofs: map[uuid.UUID]*model.DeliveryProof{}}
}

func (f *fakeProofRepo) Save(_ context.Context, proof *model.DeliveryProof) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *proof
	f.proofs[proof.RequestID] = &cp
	return nil
}

func (f *fakeProofRepo) FindByRequestID(_ context.Context, requestID uuid.UUID) (*model.DeliveryProof, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	proof, ok := f.proofs[requestID]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *proof
	return &cp, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ string, _, _ int) ([]model.AuditLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries, int64(len(f.entries)), nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []StageEvent
}

func (f *fakeNotifier) Notify(event StageEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) last() *StageEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return nil
	}
	return &f.events[len(f.events)-1]
}

// ---- fixture ----

type requestFixture struct {
	svc      RequestService
	tokens   *fakeTokenRepo
	requests *fakeRequestRepo
	proofs   *fakeProofRepo
	audit    *fakeAuditRepo
	events   *fakeNotifier
	menuID   uuid.UUID
}

func newRequestFixture(t *testing.T) *requestFixture {
	t.Helper()

	menuID := uuid.New()
	menuRepo := &fakeMenuRepo{items: map[uuid.UUID]model.MenuItem{
		menuID: {ID: menuID, Name: "Nasi Ayam", Price: decimal.NewFromInt(25000), IsAvailable: true},
	}}
	dirRepo := &fakeDirectoryRepo{units: map[string]*model.SubBidang{
		"Fasilitas Umum": {ID: uuid.New(), Name: "Fasilitas Umum", SupervisorName: "Pak Asman", SupervisorPhone: "0811"},
	}}

	tokens := newFakeTokenRepo()
	proofs := newFakeProofRepo()
	requests := newFakeRequestRepo(proofs)
	audit := &fakeAuditRepo{}
	events := &fakeNotifier{}

	registry := NewTokenRegistry(tokens, "https://portal.example.com")
	delivery := NewDeliveryService(proofs, nil)
	svc := NewRequestService(
		fakeTxManager{}, requests, registry, menuRepo, dirRepo,
		delivery, audit, events, 72*time.Hour,
	)

	return &requestFixture{
		svc: svc, tokens: tokens, requests: requests,
		proofs: proofs, audit: audit, events: events, menuID: menuID,
	}
}

func (fx *requestFixture) submission(requestType string) SubmissionPayload {
	return SubmissionPayload{
		Type:         requestType,
		SubBidang:    "Fasilitas Umum",
		JobTitle:     "Rapat Koordinasi",
		DropPoint:    "Lobi Gedung B",
		PicName:      "Budi",
		PicPhone:     "0812000111",
		RequiredDate: time.Date(2025, 3, 10, 12, 0, 0, 0, time.Local),
		EmployeeOrders: []EmployeeOrderInput{
			{EmployeeName: "Andi", Entity: model.EntityPLNIP, MenuItemID: fx.menuID.String()},
			{EmployeeName: "Sari", Entity: model.EntityIPS, MenuItemID: fx.menuID.String(), Notes: "pedas"},
		},
	}
}

// liveToken returns the unconsumed token for the request's current stage.
func (fx *requestFixture) liveToken(t *testing.T, requestID string, role string) string {
	t.Helper()
	id, err := uuid.Parse(requestID)
	if err != nil {
		t.Fatalf("bad request id: %v", err)
	}
	token, err := fx.tokens.FindLive(context.Background(), id, role)
	if err != nil {
		t.Fatalf("no live %s token: %v", role, err)
	}
	return token.Token
}

// ---- tests ----

func TestCreateStartsApprovalChain(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	result, err := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != model.StatusPendingSupervisor {
		t.Errorf("expected PENDING_SUPERVISOR, got %s", result.Status)
	}
	if !strings.HasPrefix(result.RequestCode, "REQ-") || !strings.HasSuffix(result.RequestCode, "-00001") {
		t.Errorf("unexpected request code %s", result.RequestCode)
	}
	if result.SupervisorName != "Pak Asman" {
		t.Errorf("supervisor not resolved: %s", result.SupervisorName)
	}
	if result.EstimatedCost != "50000.00" {
		t.Errorf("expected summed cost 50000.00, got %s", result.EstimatedCost)
	}
	if result.MealSlot != model.SlotMakanSiang {
		t.Errorf("expected %s for a 12:00 required date, got %s", model.SlotMakanSiang, result.MealSlot)
	}

	// A supervisor magic link must exist and travel in the notification.
	fx.liveToken(t, result.ID, model.RoleSupervisor)
	event := fx.events.last()
	if event == nil || event.Event != "REQUEST_CREATED" {
		t.Fatal("expected REQUEST_CREATED notification")
	}
	if !strings.Contains(event.ApprovalLink, "/approval/") {
		t.Errorf("notification missing magic link: %q", event.ApprovalLink)
	}
}

func TestCreateRejectsUnknownMenuItem(t *testing.T) {
	fx := newRequestFixture(t)
	payload := fx.submission(model.TypeMeal)
	payload.EmployeeOrders[0].MenuItemID = uuid.New().String()

	_, err := fx.svc.Create(context.Background(), payload, nil)
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSupervisorApproveAdvancesAndConsumesToken(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token := fx.liveToken(t, created.ID, model.RoleSupervisor)

	result, err := fx.svc.Respond(ctx, "", Actor{Token: token}, RespondDTO{Approved: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.StatusPendingGA {
		t.Errorf("expected PENDING_GA, got %s", result.Status)
	}

	// Replay of the spent link must be rejected without touching status.
	_, err = fx.svc.Respond(ctx, "", Actor{Token: token}, RespondDTO{Approved: true})
	if !errors.Is(err, model.ErrTokenAlreadyUsed) {
		t.Errorf("expected ErrTokenAlreadyUsed on replay, got %v", err)
	}
	after, _ := fx.svc.GetByID(ctx, created.ID)
	if after.Status != model.StatusPendingGA {
		t.Errorf("replay must not move status, got %s", after.Status)
	}

	// The next stage's token must exist.
	fx.liveToken(t, created.ID, model.RoleAdmin)
}

func TestTransportSkipsGAStage(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.submission(model.TypeTransport), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token := fx.liveToken(t, created.ID, model.RoleSupervisor)

	result, err := fx.svc.Respond(ctx, "", Actor{Token: token}, RespondDTO{Approved: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != model.StatusPendingKitchen {
		t.Errorf("expected PENDING_KITCHEN after supervisor approval, got %s", result.Status)
	}
}

func TestFullMealLifecycle(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Supervisor approves.
	supToken := fx.liveToken(t, created.ID, model.RoleSupervisor)
	if _, err := fx.svc.Respond(ctx, "", Actor{Token: supToken}, RespondDTO{Approved: true}); err != nil {
		t.Fatalf("supervisor approve: %v", err)
	}

	// GA approves through the portal session.
	admin := Actor{SessionRole: model.SessionRoleGA}
	if _, err := fx.svc.Respond(ctx, created.ID, admin, RespondDTO{Approved: true}); err != nil {
		t.Fatalf("ga approve: %v", err)
	}

	// Kitchen starts processing via its magic link; the token survives.
	kitchenToken := fx.liveToken(t, created.ID, model.RoleKitchen)
	result, err := fx.svc.Process(ctx, "", Actor{Token: kitchenToken})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Status != model.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", result.Status)
	}
	fx.liveToken(t, created.ID, model.RoleKitchen) // still live

	// Second process call is a no-op.
	again, err := fx.svc.Process(ctx, "", Actor{Token: kitchenToken})
	if err != nil {
		t.Fatalf("repeat process: %v", err)
	}
	if again.Status != model.StatusInProgress {
		t.Errorf("repeat process must be a no-op, got %s", again.Status)
	}

	// Deliver with a proof photo completes the request and spends the token.
	final, err := fx.svc.Deliver(ctx, "", Actor{Token: kitchenToken, Name: "Dapur"}, []byte("jpeg-bytes"), "diserahkan")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if final.Status != model.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", final.Status)
	}
	if !final.HasProof {
		t.Error("completed request must carry its proof")
	}
	if final.CompletedAt == nil {
		t.Error("completed request must have a completion timestamp")
	}
}

func TestDeliverWithoutProofStaysInProgress(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeTransport), nil)
	supToken := fx.liveToken(t, created.ID, model.RoleSupervisor)
	fx.svc.Respond(ctx, "", Actor{Token: supToken}, RespondDTO{Approved: true})

	kitchen := Actor{SessionRole: model.SessionRoleKitchen}
	if _, err := fx.svc.Process(ctx, created.ID, kitchen); err != nil {
		t.Fatalf("process: %v", err)
	}

	_, err := fx.svc.Deliver(ctx, created.ID, kitchen, nil, "")
	var vErr *model.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error without proof, got %v", err)
	}

	after, _ := fx.svc.GetByID(ctx, created.ID)
	if after.Status != model.StatusInProgress {
		t.Errorf("failed delivery must not move status, got %s", after.Status)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	supToken := fx.liveToken(t, created.ID, model.RoleSupervisor)

	result, err := fx.svc.Respond(ctx, "", Actor{Token: supToken}, RespondDTO{Approved: false, Note: "anggaran habis"})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if result.Status != model.StatusRejectedSupervisor {
		t.Errorf("expected REJECTED_SUPERVISOR, got %s", result.Status)
	}
	if result.RejectionNote != "anggaran habis" {
		t.Errorf("rejection note lost: %q", result.RejectionNote)
	}

	// No further transitions out of a rejected request.
	admin := Actor{SessionRole: model.SessionRoleAdmin}
	if _, err := fx.svc.Respond(ctx, created.ID, admin, RespondDTO{Approved: true}); err == nil {
		t.Error("expected error approving a rejected request")
	}
}

func TestStaffCannotActOnStages(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	staff := Actor{SessionRole: model.SessionRoleStaff}

	_, err := fx.svc.Respond(ctx, created.ID, staff, RespondDTO{Approved: true})
	var tErr *model.TransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected transition error for staff actor, got %v", err)
	}
}

func TestCancelRequesterOwnOnly(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	owner := uuid.New()
	created, err := fx.svc.Create(ctx, fx.submission(model.TypeMeal), &owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	stranger := uuid.New()
	_, err = fx.svc.Cancel(ctx, created.ID, Actor{SessionRole: model.SessionRoleStaff, UserID: &stranger}, "")
	var tErr *model.TransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected transition error for foreign requester, got %v", err)
	}

	result, err := fx.svc.Cancel(ctx, created.ID, Actor{SessionRole: model.SessionRoleStaff, UserID: &owner}, "batal")
	if err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if result.Status != model.StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", result.Status)
	}
}

func TestTokenBoundToItsRequest(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	first, _ := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	second, _ := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)

	firstToken := fx.liveToken(t, first.ID, model.RoleSupervisor)

	// Using the first request's token against the second request must fail.
	_, err := fx.svc.Respond(ctx, second.ID, Actor{Token: firstToken}, RespondDTO{Approved: true})
	if !errors.Is(err, model.ErrTokenInvalid) {
		t.Errorf("expected ErrTokenInvalid for cross-request token, got %v", err)
	}
}

func TestVerifyTokenIsReadOnly(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	token := fx.liveToken(t, created.ID, model.RoleSupervisor)

	for i := 0; i < 2; i++ {
		resp, role, err := fx.svc.VerifyToken(ctx, token)
		if err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
		if role != model.RoleSupervisor {
			t.Errorf("expected SUPERVISOR role, got %s", role)
		}
		if resp.ID != created.ID {
			t.Error("verify resolved the wrong request")
		}
	}
}

func TestDeliverAfterCompletionLeavesProofIntact(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeTransport), nil)
	supToken := fx.liveToken(t, created.ID, model.RoleSupervisor)
	fx.svc.Respond(ctx, "", Actor{Token: supToken}, RespondDTO{Approved: true})

	kitchen := Actor{SessionRole: model.SessionRoleKitchen, Name: "Dapur"}
	if _, err := fx.svc.Process(ctx, created.ID, kitchen); err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := fx.svc.Deliver(ctx, created.ID, kitchen, []byte("first-jpeg"), ""); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	// A deliver against the completed request must fail without touching
	// the stored proof, whoever sends it.
	admin := Actor{SessionRole: model.SessionRoleAdmin, Name: "Intru"}
	_, err := fx.svc.Deliver(ctx, created.ID, admin, []byte("second-jpeg"), "")
	var tErr *model.TransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected transition error on completed request, got %v", err)
	}

	id, _ := uuid.Parse(created.ID)
	proof, proofErr := fx.proofs.FindByRequestID(ctx, id)
	if proofErr != nil {
		t.Fatalf("proof lookup: %v", proofErr)
	}
	if string(proof.ImageData) != "first-jpeg" {
		t.Errorf("proof was overwritten after completion: %q", proof.ImageData)
	}
	if proof.UploadedBy != "Dapur" {
		t.Errorf("proof uploader changed: %q", proof.UploadedBy)
	}
}

func TestKitchenRespondApproveKeepsTokenLive(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeTransport), nil)
	supToken := fx.liveToken(t, created.ID, model.RoleSupervisor)
	fx.svc.Respond(ctx, "", Actor{Token: supToken}, RespondDTO{Approved: true})

	// A kitchen approve through the generic respond endpoint starts
	// processing without spending the token.
	kitchenToken := fx.liveToken(t, created.ID, model.RoleKitchen)
	result, err := fx.svc.Respond(ctx, "", Actor{Token: kitchenToken}, RespondDTO{Approved: true})
	if err != nil {
		t.Fatalf("kitchen respond: %v", err)
	}
	if result.Status != model.StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", result.Status)
	}

	// The same link must still complete the delivery.
	final, err := fx.svc.Deliver(ctx, "", Actor{Token: kitchenToken, Name: "Dapur"}, []byte("jpeg"), "")
	if err != nil {
		t.Fatalf("deliver with same token: %v", err)
	}
	if final.Status != model.StatusCompleted {
		t.Errorf("expected COMPLETED, got %s", final.Status)
	}
}

func TestProcessAuthorizesRepostsToo(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeTransport), nil)
	supToken := fx.liveToken(t, created.ID, model.RoleSupervisor)
	fx.svc.Respond(ctx, "", Actor{Token: supToken}, RespondDTO{Approved: true})

	kitchen := Actor{SessionRole: model.SessionRoleKitchen}
	if _, err := fx.svc.Process(ctx, created.ID, kitchen); err != nil {
		t.Fatalf("process: %v", err)
	}

	// The no-op repost path still consults the authorization table: a
	// staff session gets nothing back.
	_, err := fx.svc.Process(ctx, created.ID, Actor{SessionRole: model.SessionRoleStaff})
	var tErr *model.TransitionError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected transition error for staff repost, got %v", err)
	}
}

func TestAuditTrailWritten(t *testing.T) {
	fx := newRequestFixture(t)
	ctx := context.Background()

	created, _ := fx.svc.Create(ctx, fx.submission(model.TypeMeal), nil)
	token := fx.liveToken(t, created.ID, model.RoleSupervisor)
	fx.svc.Respond(ctx, "", Actor{Token: token}, RespondDTO{Approved: true})

	actions := map[string]bool{}
	for _, e := range fx.audit.entries {
		actions[e.Action] = true
	}
	if !actions[model.ActionCreateRequest] || !actions[model.ActionApproveRequest] {
		t.Errorf("expected create and approve audit rows, got %v", actions)
	}
}
