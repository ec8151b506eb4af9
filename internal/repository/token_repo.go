package repository

import (
	"context"
	"errors"
	"time"

	"mealportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TokenRepository persists approval tokens. Consume is the one place a race
// is expected (two tabs opening the same magic link) and resolves it with a
// single-winner test-and-set update.
type TokenRepository interface {
	Create(ctx context.Context, token *model.ApprovalToken) error
	FindByToken(ctx context.Context, token string) (*model.ApprovalToken, error)
	FindLive(ctx context.Context, requestID uuid.UUID, tokenType string) (*model.ApprovalToken, error)
	// Consume flips is_used exactly once. Returns model.ErrTokenAlreadyUsed
	// when another caller won the race or the token was spent earlier.
	Consume(ctx context.Context, token string, usedAt time.Time) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalToken, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *model.ApprovalToken) error {
	return GetDB(ctx, r.db).Create(token).Error
}

func (r *tokenRepository) FindByToken(ctx context.Context, token string) (*model.ApprovalToken, error) {
	var t model.ApprovalToken
	if err := GetDB(ctx, r.db).First(&t, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTokenInvalid
		}
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) FindLive(ctx context.Context, requestID uuid.UUID, tokenType string) (*model.ApprovalToken, error) {
	var t model.ApprovalToken
	err := GetDB(ctx, r.db).
		Where("request_id = ? AND type = ? AND is_used = false", requestID, tokenType).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepository) Consume(ctx context.Context, token string, usedAt time.Time) error {
	result := GetDB(ctx, r.db).Model(&model.ApprovalToken{}).
		Where("token = ? AND is_used = false", token).
		Updates(map[string]interface{}{"is_used": true, "used_at": usedAt})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrTokenAlreadyUsed
	}
	return nil
}

func (r *tokenRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.ApprovalToken, error) {
	var tokens []model.ApprovalToken
	if err := GetDB(ctx, r.db).Where("request_id = ?", requestID).Order("created_at ASC").Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}
