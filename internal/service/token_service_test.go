package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mealportal/internal/model"

	"github.com/google/uuid"
)

// fakeTokenRepo is an in-memory TokenRepository whose Consume implements the
// same single-winner test-and-set as the SQL version.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*model.ApprovalToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*model.ApprovalToken{}}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *model.ApprovalToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	cp := *token
	f.tokens[token.Token] = &cp
	return nil
}

func (f *fakeTokenRepo) FindByToken(_ context.Context, token string) (*model.ApprovalToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok {
		return nil, model.ErrTokenInvalid
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenRepo) FindLive(_ context.Context, requestID uuid.UUID, tokenType string) (*model.ApprovalToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.RequestID == requestID && t.Type == tokenType && !t.IsUsed {
			cp := *t
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeTokenRepo) Consume(_ context.Context, token string, usedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[token]
	if !ok || t.IsUsed {
		return model.ErrTokenAlreadyUsed
	}
	t.IsUsed = true
	t.UsedAt = &usedAt
	return nil
}

func (f *fakeTokenRepo) ListByRequest(_ context.Context, requestID uuid.UUID) ([]model.ApprovalToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ApprovalToken
	for _, t := range f.tokens {
		if t.RequestID == requestID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func TestIssueGeneratesUniqueSingleUseTokens(t *testing.T) {
	repo := newFakeTokenRepo()
	registry := NewTokenRegistry(repo, "https://portal.example.com")
	ctx := context.Background()

	first, err := registry.Issue(ctx, uuid.New(), model.RoleSupervisor, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Token) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first.Token))
	}

	second, err := registry.Issue(ctx, uuid.New(), model.RoleSupervisor, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Token == second.Token {
		t.Error("tokens for different requests must differ")
	}
}

func TestIssueRefusesDuplicateLiveToken(t *testing.T) {
	repo := newFakeTokenRepo()
	registry := NewTokenRegistry(repo, "")
	ctx := context.Background()
	requestID := uuid.New()

	if _, err := registry.Issue(ctx, requestID, model.RoleKitchen, time.Hour); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := registry.Issue(ctx, requestID, model.RoleKitchen, time.Hour); err == nil {
		t.Fatal("expected error issuing second live token for same request/role")
	}
}

func TestValidateDoesNotConsume(t *testing.T) {
	repo := newFakeTokenRepo()
	registry := NewTokenRegistry(repo, "")
	ctx := context.Background()

	issued, err := registry.Issue(ctx, uuid.New(), model.RoleSupervisor, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := registry.Validate(ctx, issued.Token); err != nil {
			t.Fatalf("validate %d: unexpected error: %v", i, err)
		}
	}
}

func TestConsumeIsSingleUse(t *testing.T) {
	repo := newFakeTokenRepo()
	registry := NewTokenRegistry(repo, "")
	ctx := context.Background()

	issued, err := registry.Issue(ctx, uuid.New(), model.RoleSupervisor, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	consumed, err := registry.Consume(ctx, issued.Token)
	if err != nil {
		t.Fatalf("first consume: unexpected error: %v", err)
	}
	if !consumed.IsUsed || consumed.UsedAt == nil {
		t.Error("consumed token must be marked used with a timestamp")
	}

	if _, err := registry.Consume(ctx, issued.Token); err != model.ErrTokenAlreadyUsed {
		t.Errorf("second consume: expected ErrTokenAlreadyUsed, got %v", err)
	}
	if _, err := registry.Validate(ctx, issued.Token); err != model.ErrTokenAlreadyUsed {
		t.Errorf("validate after consume: expected ErrTokenAlreadyUsed, got %v", err)
	}
}

// TestConcurrentConsumeSingleWinner verifies the double-click / two-tab case:
// many goroutines racing on one token, exactly one wins.
func TestConcurrentConsumeSingleWinner(t *testing.T) {
	repo := newFakeTokenRepo()
	registry := NewTokenRegistry(repo, "")
	ctx := context.Background()

	issued, err := registry.Issue(ctx, uuid.New(), model.RoleSupervisor, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const racers = 20
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := registry.Consume(ctx, issued.Token); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins.Load())
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	repo := newFakeTokenRepo()
	registry := NewTokenRegistry(repo, "").(*tokenRegistry)
	ctx := context.Background()

	issued, err := registry.Issue(ctx, uuid.New(), model.RoleSupervisor, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	registry.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	if _, err := registry.Validate(ctx, issued.Token); err != model.ErrTokenExpired {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
	if _, err := registry.Consume(ctx, issued.Token); err != model.ErrTokenExpired {
		t.Errorf("consume expired: expected ErrTokenExpired, got %v", err)
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	repo := newFakeTokenRepo()
	registry := NewTokenRegistry(repo, "").(*tokenRegistry)
	ctx := context.Background()

	issued, err := registry.Issue(ctx, uuid.New(), model.RoleSupervisor, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued.ExpiresAt != nil {
		t.Fatal("zero TTL must leave ExpiresAt unset")
	}

	registry.now = func() time.Time { return time.Now().AddDate(1, 0, 0) }
	if _, err := registry.Validate(ctx, issued.Token); err != nil {
		t.Errorf("unexpected error validating non-expiring token: %v", err)
	}
}

func TestUnknownTokenInvalid(t *testing.T) {
	registry := NewTokenRegistry(newFakeTokenRepo(), "")
	if _, err := registry.Validate(context.Background(), "deadbeef"); err != model.ErrTokenInvalid {
		t.Errorf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestMagicLinkFormat(t *testing.T) {
	registry := NewTokenRegistry(newFakeTokenRepo(), "https://portal.example.com/")
	if got := registry.MagicLink("abc"); got != "https://portal.example.com/approval/abc" {
		t.Errorf("unexpected magic link: %s", got)
	}

	bare := NewTokenRegistry(newFakeTokenRepo(), "")
	if got := bare.MagicLink("abc"); got != "/approval/abc" {
		t.Errorf("unexpected relative magic link: %s", got)
	}
}
