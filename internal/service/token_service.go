package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"mealportal/internal/model"
	"mealportal/internal/repository"

	"github.com/google/uuid"
)

// TokenRegistry issues, validates and consumes the single-use magic-link
// tokens. At most one unconsumed token may exist per (request, role);
// consumed tokens are kept forever as the approval audit trail.
type TokenRegistry interface {
	// Issue creates a new token for the request/role pair. It fails when an
	// unconsumed token for the pair already exists.
	Issue(ctx context.Context, requestID uuid.UUID, role string, ttl time.Duration) (*model.ApprovalToken, error)
	// Validate is read-only: it resolves the token without consuming it.
	Validate(ctx context.Context, token string) (*model.ApprovalToken, error)
	// Consume atomically validates and spends the token. Exactly one caller
	// succeeds under concurrent use of the same token.
	Consume(ctx context.Context, token string) (*model.ApprovalToken, error)
	// MagicLink renders the approval URL for a token.
	MagicLink(token string) string
}

type tokenRegistry struct {
	repo    repository.TokenRepository
	baseURL string
	now     func() time.Time
}

func NewTokenRegistry(repo repository.TokenRepository, baseURL string) TokenRegistry {
	return &tokenRegistry{repo: repo, baseURL: baseURL, now: time.Now}
}

// generateToken returns 32 bytes of crypto randomness as hex.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (r *tokenRegistry) Issue(ctx context.Context, requestID uuid.UUID, role string, ttl time.Duration) (*model.ApprovalToken, error) {
	switch role {
	case model.RoleSupervisor, model.RoleKitchen, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown approval role: %s", role)
	}

	if _, err := r.repo.FindLive(ctx, requestID, role); err == nil {
		return nil, fmt.Errorf("an unconsumed %s token already exists for request %s", role, requestID)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	value, err := generateToken()
	if err != nil {
		return nil, err
	}

	token := &model.ApprovalToken{
		Token:     value,
		Type:      role,
		RequestID: requestID,
	}
	if ttl > 0 {
		expires := r.now().Add(ttl)
		token.ExpiresAt = &expires
	}

	if err := r.repo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store approval token: %w", err)
	}

	return token, nil
}

func (r *tokenRegistry) Validate(ctx context.Context, token string) (*model.ApprovalToken, error) {
	t, err := r.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if t.IsUsed {
		return nil, model.ErrTokenAlreadyUsed
	}
	if t.Expired(r.now()) {
		return nil, model.ErrTokenExpired
	}
	return t, nil
}

func (r *tokenRegistry) Consume(ctx context.Context, token string) (*model.ApprovalToken, error) {
	t, err := r.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	// Test-and-set in the store; only one concurrent caller gets here with
	// RowsAffected == 1, everyone else sees TOKEN_ALREADY_USED.
	usedAt := r.now()
	if err := r.repo.Consume(ctx, t.Token, usedAt); err != nil {
		return nil, err
	}

	t.IsUsed = true
	t.UsedAt = &usedAt
	return t, nil
}

func (r *tokenRegistry) MagicLink(token string) string {
	base := strings.TrimRight(r.baseURL, "/")
	if base == "" {
		return "/approval/" + token
	}
	return base + "/approval/" + token
}
