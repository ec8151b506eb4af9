package model

import "time"

// StatusCount pairs a lifecycle status with its request count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// SlotCount pairs a meal slot with its completed-request count.
type SlotCount struct {
	MealSlot string `json:"meal_slot"`
	Count    int64  `json:"count"`
}

// MenuItemRanking ranks a catalog item by how often it was ordered.
type MenuItemRanking struct {
	MenuItemID    string  `json:"menu_item_id"`
	MenuItemName  string  `json:"menu_item_name"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalValue    float64 `json:"total_value"`
}

// StatisticsResponse is the GA dashboard aggregate over a date range.
type StatisticsResponse struct {
	TimeRangeStartDate time.Time         `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time         `json:"time_range_end_date"`
	TotalRequests      int64             `json:"total_requests"`
	CompletedRequests  int64             `json:"completed_requests"`
	RejectedRequests   int64             `json:"rejected_requests"`
	TotalCompletedCost float64           `json:"total_completed_cost"`
	ByStatus           []StatusCount     `json:"by_status"`
	BySlot             []SlotCount       `json:"by_slot"`
	TopMenuItems       []MenuItemRanking `json:"top_menu_items"`
}
