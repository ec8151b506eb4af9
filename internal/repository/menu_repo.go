package repository

import (
	"context"
	"errors"

	"mealportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MenuRepository is the data-access boundary for the orderable catalog.
type MenuRepository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.MenuItem, error)
	List(ctx context.Context, category string, availableOnly bool, page, limit int) ([]model.MenuItem, int64, error)
	Update(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) Create(ctx context.Context, item *model.MenuItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *menuRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.MenuItem, error) {
	var item model.MenuItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *menuRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.MenuItem, error) {
	var items []model.MenuItem
	if len(ids) == 0 {
		return items, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *menuRepository) List(ctx context.Context, category string, availableOnly bool, page, limit int) ([]model.MenuItem, int64, error) {
	var items []model.MenuItem
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.MenuItem{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if availableOnly {
		query = query.Where("is_available = true")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("category ASC, name ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *menuRepository) Update(ctx context.Context, item *model.MenuItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *menuRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.MenuItem{}).Error
}
