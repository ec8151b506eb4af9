package service

import (
	"context"
	"errors"

	"mealportal/internal/model"
	"mealportal/internal/repository"

	"github.com/google/uuid"
)

// DTOs for Request validation
type CreateSubBidangRequest struct {
	Name            string `json:"name" binding:"required"`
	SupervisorName  string `json:"supervisor_name" binding:"required"`
	SupervisorPhone string `json:"supervisor_phone" binding:"required"`
}

type UpdateSubBidangRequest struct {
	Name            string `json:"name"`
	SupervisorName  string `json:"supervisor_name"`
	SupervisorPhone string `json:"supervisor_phone"`
}

type CreateEmployeeRequest struct {
	Name        string `json:"name" binding:"required"`
	Entity      string `json:"entity" binding:"required"`
	SubBidangID string `json:"sub_bidang_id"`
	JobTitle    string `json:"job_title"`
	Phone       string `json:"phone"`
}

type UpdateEmployeeRequest struct {
	Name        string `json:"name"`
	Entity      string `json:"entity"`
	SubBidangID string `json:"sub_bidang_id"`
	JobTitle    string `json:"job_title"`
	Phone       string `json:"phone"`
}

// SupervisorResponse is what the composer needs to prefill the approval
// banner before submission.
type SupervisorResponse struct {
	SubBidang       string `json:"sub_bidang"`
	SupervisorName  string `json:"supervisor_name"`
	SupervisorPhone string `json:"supervisor_phone"`
}

// DirectoryService maintains the sub-bidang and employee reference data used
// by the composer. ResolveSupervisor answers "who approves for this unit".
type DirectoryService interface {
	CreateSubBidang(ctx context.Context, req CreateSubBidangRequest) (*model.SubBidang, error)
	ListSubBidang(ctx context.Context, page, limit int) ([]model.SubBidang, int64, error)
	UpdateSubBidang(ctx context.Context, id string, req UpdateSubBidangRequest) (*model.SubBidang, error)
	DeleteSubBidang(ctx context.Context, id string) error
	ResolveSupervisor(ctx context.Context, subBidangName string) (*SupervisorResponse, error)

	CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*model.Employee, error)
	ListEmployees(ctx context.Context, entity, subBidang string, page, limit int) ([]model.Employee, int64, error)
	UpdateEmployee(ctx context.Context, id string, req UpdateEmployeeRequest) (*model.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

type directoryService struct {
	repo repository.DirectoryRepository
}

func NewDirectoryService(repo repository.DirectoryRepository) DirectoryService {
	return &directoryService{repo: repo}
}

func validEntity(entity string) bool {
	for _, e := range model.Entities {
		if e == entity {
			return true
		}
	}
	return false
}

func (s *directoryService) CreateSubBidang(ctx context.Context, req CreateSubBidangRequest) (*model.SubBidang, error) {
	if _, err := s.repo.FindSubBidangByName(ctx, req.Name); err == nil {
		return nil, errors.New("sub-bidang already exists")
	}

	sb := &model.SubBidang{
		Name:            req.Name,
		SupervisorName:  req.SupervisorName,
		SupervisorPhone: req.SupervisorPhone,
	}
	if err := s.repo.CreateSubBidang(ctx, sb); err != nil {
		return nil, err
	}
	return sb, nil
}

func (s *directoryService) ListSubBidang(ctx context.Context, page, limit int) ([]model.SubBidang, int64, error) {
	return s.repo.ListSubBidang(ctx, page, limit)
}

func (s *directoryService) UpdateSubBidang(ctx context.Context, id string, req UpdateSubBidangRequest) (*model.SubBidang, error) {
	sbID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}

	sb, err := s.repo.FindSubBidangByID(ctx, sbID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		sb.Name = req.Name
	}
	if req.SupervisorName != "" {
		sb.SupervisorName = req.SupervisorName
	}
	if req.SupervisorPhone != "" {
		sb.SupervisorPhone = req.SupervisorPhone
	}

	if err := s.repo.UpdateSubBidang(ctx, sb); err != nil {
		return nil, err
	}
	return sb, nil
}

func (s *directoryService) DeleteSubBidang(ctx context.Context, id string) error {
	sbID, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}
	return s.repo.DeleteSubBidang(ctx, sbID)
}

func (s *directoryService) ResolveSupervisor(ctx context.Context, subBidangName string) (*SupervisorResponse, error) {
	sb, err := s.repo.FindSubBidangByName(ctx, subBidangName)
	if err != nil {
		return nil, err
	}
	return &SupervisorResponse{
		SubBidang:       sb.Name,
		SupervisorName:  sb.SupervisorName,
		SupervisorPhone: sb.SupervisorPhone,
	}, nil
}

func (s *directoryService) CreateEmployee(ctx context.Context, req CreateEmployeeRequest) (*model.Employee, error) {
	if !validEntity(req.Entity) {
		return nil, model.NewValidationError("entity")
	}

	emp := &model.Employee{
		Name:     req.Name,
		Entity:   req.Entity,
		JobTitle: req.JobTitle,
		Phone:    req.Phone,
	}
	if req.SubBidangID != "" {
		sbID, err := uuid.Parse(req.SubBidangID)
		if err != nil {
			return nil, model.NewValidationError("sub_bidang_id")
		}
		emp.SubBidangID = &sbID
	}

	if err := s.repo.CreateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *directoryService) ListEmployees(ctx context.Context, entity, subBidang string, page, limit int) ([]model.Employee, int64, error) {
	return s.repo.ListEmployees(ctx, entity, subBidang, page, limit)
}

func (s *directoryService) UpdateEmployee(ctx context.Context, id string, req UpdateEmployeeRequest) (*model.Employee, error) {
	empID, err := uuid.Parse(id)
	if err != nil {
		return nil, model.ErrNotFound
	}
	emp, err := s.repo.FindEmployeeByID(ctx, empID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		emp.Name = req.Name
	}
	if req.Entity != "" {
		if !validEntity(req.Entity) {
			return nil, model.NewValidationError("entity")
		}
		emp.Entity = req.Entity
	}
	if req.SubBidangID != "" {
		sbID, parseErr := uuid.Parse(req.SubBidangID)
		if parseErr != nil {
			return nil, model.NewValidationError("sub_bidang_id")
		}
		emp.SubBidangID = &sbID
	}
	if req.JobTitle != "" {
		emp.JobTitle = req.JobTitle
	}
	if req.Phone != "" {
		emp.Phone = req.Phone
	}

	if err := s.repo.UpdateEmployee(ctx, emp); err != nil {
		return nil, err
	}
	return emp, nil
}

func (s *directoryService) DeleteEmployee(ctx context.Context, id string) error {
	empID, err := uuid.Parse(id)
	if err != nil {
		return model.ErrNotFound
	}
	return s.repo.DeleteEmployee(ctx, empID)
}
