package repository

import (
	"context"
	"errors"

	"mealportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DirectoryRepository resolves organizational units and their members.
type DirectoryRepository interface {
	CreateSubBidang(ctx context.Context, sb *model.SubBidang) error
	FindSubBidangByID(ctx context.Context, id uuid.UUID) (*model.SubBidang, error)
	FindSubBidangByName(ctx context.Context, name string) (*model.SubBidang, error)
	ListSubBidang(ctx context.Context, page, limit int) ([]model.SubBidang, int64, error)
	UpdateSubBidang(ctx context.Context, sb *model.SubBidang) error
	DeleteSubBidang(ctx context.Context, id uuid.UUID) error

	CreateEmployee(ctx context.Context, emp *model.Employee) error
	FindEmployeeByID(ctx context.Context, id uuid.UUID) (*model.Employee, error)
	ListEmployees(ctx context.Context, entity, subBidang string, page, limit int) ([]model.Employee, int64, error)
	UpdateEmployee(ctx context.Context, emp *model.Employee) error
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
}

type directoryRepository struct {
	db *gorm.DB
}

func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) CreateSubBidang(ctx context.Context, sb *model.SubBidang) error {
	return GetDB(ctx, r.db).Create(sb).Error
}

func (r *directoryRepository) FindSubBidangByID(ctx context.Context, id uuid.UUID) (*model.SubBidang, error) {
	var sb model.SubBidang
	if err := GetDB(ctx, r.db).First(&sb, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &sb, nil
}

func (r *directoryRepository) FindSubBidangByName(ctx context.Context, name string) (*model.SubBidang, error) {
	var sb model.SubBidang
	if err := GetDB(ctx, r.db).First(&sb, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &sb, nil
}

func (r *directoryRepository) ListSubBidang(ctx context.Context, page, limit int) ([]model.SubBidang, int64, error) {
	var units []model.SubBidang
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.SubBidang{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("name ASC").Offset(offset).Limit(limit).Find(&units).Error; err != nil {
		return nil, 0, err
	}

	return units, total, nil
}

func (r *directoryRepository) UpdateSubBidang(ctx context.Context, sb *model.SubBidang) error {
	return GetDB(ctx, r.db).Save(sb).Error
}

func (r *directoryRepository) DeleteSubBidang(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SubBidang{}).Error
}

func (r *directoryRepository) CreateEmployee(ctx context.Context, emp *model.Employee) error {
	return GetDB(ctx, r.db).Create(emp).Error
}

func (r *directoryRepository) FindEmployeeByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	var emp model.Employee
	if err := GetDB(ctx, r.db).Preload("SubBidang").First(&emp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *directoryRepository) ListEmployees(ctx context.Context, entity, subBidang string, page, limit int) ([]model.Employee, int64, error) {
	var employees []model.Employee
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Employee{})
	if entity != "" {
		query = query.Where("entity = ?", entity)
	}
	if subBidang != "" {
		query = query.Joins("JOIN sub_bidangs ON sub_bidangs.id = employees.sub_bidang_id").
			Where("sub_bidangs.name = ?", subBidang)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("SubBidang").Order("name ASC").Offset(offset).Limit(limit).Find(&employees).Error; err != nil {
		return nil, 0, err
	}

	return employees, total, nil
}

func (r *directoryRepository) UpdateEmployee(ctx context.Context, emp *model.Employee) error {
	return GetDB(ctx, r.db).Save(emp).Error
}

func (r *directoryRepository) DeleteEmployee(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Employee{}).Error
}
