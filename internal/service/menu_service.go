package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mealportal/internal/model"
	"mealportal/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs for Request validation
type CreateMenuItemRequest struct {
	Name        string          `json:"name" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	IsAvailable *bool           `json:"is_available"`
}

type UpdateMenuItemRequest struct {
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	IsAvailable *bool            `json:"is_available"`
}

type MenuItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

// MenuService manages the orderable catalog. Mutations are audited; the
// composer reads the catalog through ListMenuItems with availableOnly set.
type MenuService interface {
	CreateMenuItem(ctx context.Context, actorID *uuid.UUID, req CreateMenuItemRequest) (*MenuItemResponse, error)
	GetMenuItem(ctx context.Context, id string) (*MenuItemResponse, error)
	ListMenuItems(ctx context.Context, category string, availableOnly bool, page, limit int) ([]MenuItemResponse, int64, error)
	UpdateMenuItem(ctx context.Context, actorID *uuid.UUID, id string, req UpdateMenuItemRequest) (*MenuItemResponse, error)
	DeleteMenuItem(ctx context.Context, actorID *uuid.UUID, id string) error
}

type menuService struct {
	repo  repository.MenuRepository
	audit repository.AuditRepository
}

func NewMenuService(repo repository.MenuRepository, audit repository.AuditRepository) MenuService {
	return &menuService{repo: repo, audit: audit}
}

func mapToMenuItemResponse(item *model.MenuItem) *MenuItemResponse {
	return &MenuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		Price:       item.Price,
		IsAvailable: item.IsAvailable,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *menuService) CreateMenuItem(ctx context.Context, actorID *uuid.UUID, req CreateMenuItemRequest) (*MenuItemResponse, error) {
	if req.Price.IsNegative() {
		return nil, model.NewValidationError("price")
	}

	item := &model.MenuItem{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logMenuAudit(ctx, actorID, model.ActionCreateMenuItem, item)
	return mapToMenuItemResponse(item), nil
}

func (s *menuService) GetMenuItem(ctx context.Context, id string) (*MenuItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return mapToMenuItemResponse(item), nil
}

func (s *menuService) ListMenuItems(ctx context.Context, category string, availableOnly bool, page, limit int) ([]MenuItemResponse, int64, error) {
	items, total, err := s.repo.List(ctx, category, availableOnly, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MenuItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, *mapToMenuItemResponse(&items[i]))
	}
	return responses, total, nil
}

func (s *menuService) UpdateMenuItem(ctx context.Context, actorID *uuid.UUID, id string, req UpdateMenuItemRequest) (*MenuItemResponse, error) {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return nil, errors.New("menu item not found")
	}

	if req.Name != "" {
		item.Name = req.Name
	}
	if req.Category != "" {
		item.Category = req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, model.NewValidationError("price")
		}
		item.Price = *req.Price
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.logMenuAudit(ctx, actorID, model.ActionUpdateMenuItem, item)
	return mapToMenuItemResponse(item), nil
}

func (s *menuService) DeleteMenuItem(ctx context.Context, actorID *uuid.UUID, id string) error {
	itemID, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		return errors.New("menu item not found")
	}

	// Soft delete keeps historical order lines resolvable.
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return err
	}

	s.logMenuAudit(ctx, actorID, model.ActionDeleteMenuItem, item)
	return nil
}

func (s *menuService) logMenuAudit(ctx context.Context, actorID *uuid.UUID, action string, item *model.MenuItem) {
	details, _ := json.Marshal(map[string]interface{}{
		"category": item.Category,
		"price":    item.Price,
	})
	// Catalog audit is best-effort; a failed log never blocks the mutation.
	_ = s.audit.Log(ctx, &model.AuditLog{
		UserID:     actorID,
		Action:     action,
		EntityID:   item.ID.String(),
		EntityName: item.Name,
		Details:    string(details),
	})
}
