package repository

import (
	"context"
	"errors"

	"mealportal/internal/model"

	"gorm.io/gorm"
)

// DraftRepository persists composer autosave drafts, one per owner.
type DraftRepository interface {
	Save(ctx context.Context, draft *model.ComposerDraft) error
	FindByOwner(ctx context.Context, ownerKey string) (*model.ComposerDraft, error)
	DeleteByOwner(ctx context.Context, ownerKey string) error
}

type draftRepository struct {
	db *gorm.DB
}

func NewDraftRepository(db *gorm.DB) DraftRepository {
	return &draftRepository{db: db}
}

func (r *draftRepository) Save(ctx context.Context, draft *model.ComposerDraft) error {
	db := GetDB(ctx, r.db)

	var existing model.ComposerDraft
	err := db.First(&existing, "owner_key = ?", draft.OwnerKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return db.Create(draft).Error
		}
		return err
	}

	existing.Payload = draft.Payload
	return db.Save(&existing).Error
}

func (r *draftRepository) FindByOwner(ctx context.Context, ownerKey string) (*model.ComposerDraft, error) {
	var draft model.ComposerDraft
	if err := GetDB(ctx, r.db).First(&draft, "owner_key = ?", ownerKey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepository) DeleteByOwner(ctx context.Context, ownerKey string) error {
	return GetDB(ctx, r.db).Where("owner_key = ?", ownerKey).Delete(&model.ComposerDraft{}).Error
}
