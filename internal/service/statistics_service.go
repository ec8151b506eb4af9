package service

import (
	"context"
	"time"

	"mealportal/internal/model"

	"gorm.io/gorm"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetStatistics aggregates request metrics for the GA dashboard over the
// given date range. Reads are lock-free; slightly stale numbers are fine.
func (s *statisticsService) GetStatistics(ctx context.Context, startDate, endDate time.Time) (model.StatisticsResponse, error) {
	var response model.StatisticsResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	if err := s.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Count(&response.TotalRequests).Error; err != nil {
		return response, err
	}

	// Per-status breakdown
	var byStatus []model.StatusCount
	if err := s.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Select("status, COUNT(*) as count").
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Group("status").
		Order("count DESC").
		Scan(&byStatus).Error; err != nil {
		return response, err
	}
	response.ByStatus = byStatus
	for _, sc := range byStatus {
		switch sc.Status {
		case model.StatusCompleted:
			response.CompletedRequests = sc.Count
		case model.StatusRejectedSupervisor, model.StatusRejectedGA, model.StatusRejectedKitchen:
			response.RejectedRequests += sc.Count
		}
	}

	// Completed spend
	var totalCost struct {
		Value float64
	}
	s.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Select("COALESCE(SUM(estimated_cost), 0) as value").
		Where("status = ? AND created_at >= ? AND created_at <= ?", model.StatusCompleted, startDate, endDate).
		Scan(&totalCost)
	response.TotalCompletedCost = totalCost.Value

	// Per-slot breakdown of completed requests
	var bySlot []model.SlotCount
	if err := s.db.WithContext(ctx).Model(&model.ServiceRequest{}).
		Select("meal_slot, COUNT(*) as count").
		Where("status = ? AND created_at >= ? AND created_at <= ?", model.StatusCompleted, startDate, endDate).
		Group("meal_slot").
		Order("count DESC").
		Scan(&bySlot).Error; err != nil {
		return response, err
	}
	response.BySlot = bySlot

	// Top ordered catalog items
	var topItems []model.MenuItemRanking
	s.db.WithContext(ctx).Table("order_items").
		Select("menu_items.id as menu_item_id, menu_items.name as menu_item_name, SUM(order_items.quantity) as total_quantity, SUM(order_items.quantity * menu_items.price) as total_value").
		Joins("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Joins("JOIN employee_orders ON employee_orders.id = order_items.employee_order_id").
		Joins("JOIN service_requests ON service_requests.id = employee_orders.request_id").
		Where("service_requests.created_at >= ? AND service_requests.created_at <= ?", startDate, endDate).
		Group("menu_items.id, menu_items.name").
		Order("total_quantity DESC").
		Limit(5).
		Scan(&topItems)
	response.TopMenuItems = topItems

	return response, nil
}
