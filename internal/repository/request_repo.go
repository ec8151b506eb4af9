package repository

import (
	"context"
	"errors"
	"time"

	"mealportal/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RequestFilter narrows monitoring reads.
type RequestFilter struct {
	Status    string
	Type      string
	SubBidang string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

// RequestRepository is the data-access boundary for service requests. Status
// writes go through UpdateStatus inside a transaction holding the row lock
// from FindByIDForUpdate; reads for the monitoring views are lock-free.
type RequestRepository interface {
	Create(ctx context.Context, req *model.ServiceRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	// FindByIDForUpdate loads the request under a row-level lock, serializing
	// concurrent transitions on the same request.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]model.ServiceRequest, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status, rejectionNote string, completedAt *time.Time) error
	CountByDayPrefix(ctx context.Context, codePrefix string) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.ServiceRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &req, nil
}

func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ServiceRequest, error) {
	var req model.ServiceRequest
	if err := GetDB(ctx, r.db).
		Preload("EmployeeOrders", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("EmployeeOrders.Items").
		Preload("ApprovalTokens").
		Preload("Proof").
		Preload("Creator").
		First(&req, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.ServiceRequest, int64, error) {
	var requests []model.ServiceRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ServiceRequest{})
	query = applyRequestFilter(query, filter)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetchQuery := applyRequestFilter(db.Model(&model.ServiceRequest{}), filter).
		Preload("EmployeeOrders", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("EmployeeOrders.Items").
		Preload("Proof")
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func applyRequestFilter(query *gorm.DB, filter RequestFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.SubBidang != "" {
		query = query.Where("sub_bidang = ?", filter.SubBidang)
	}
	if filter.DateFrom != nil {
		query = query.Where("required_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("required_date <= ?", *filter.DateTo)
	}
	return query
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status, rejectionNote string, completedAt *time.Time) error {
	updates := map[string]interface{}{"status": status}
	if rejectionNote != "" {
		updates["rejection_note"] = rejectionNote
	}
	if completedAt != nil {
		updates["completed_at"] = *completedAt
	}
	return GetDB(ctx, r.db).Model(&model.ServiceRequest{}).Where("id = ?", id).Updates(updates).Error
}

func (r *requestRepository) CountByDayPrefix(ctx context.Context, codePrefix string) (int64, error) {
	db := GetDB(ctx, r.db)
	// Advisory lock keeps concurrent request-code generation from colliding.
	db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", codePrefix)

	var count int64
	err := db.Model(&model.ServiceRequest{}).
		Where("request_code LIKE ?", codePrefix+"%").
		Count(&count).Error
	return count, err
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNotFound
	}
	return err
}
