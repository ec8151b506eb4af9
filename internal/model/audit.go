package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRequest  = "CREATE_REQUEST"
	ActionApproveRequest = "APPROVE_REQUEST"
	ActionRejectRequest  = "REJECT_REQUEST"
	ActionProcessRequest = "PROCESS_REQUEST"
	ActionDeliverRequest = "DELIVER_REQUEST"
	ActionCancelRequest  = "CANCEL_REQUEST"
	ActionIssueToken     = "ISSUE_APPROVAL_TOKEN"

	ActionCreateMenuItem = "CREATE_MENU_ITEM"
	ActionUpdateMenuItem = "UPDATE_MENU_ITEM"
	ActionDeleteMenuItem = "DELETE_MENU_ITEM"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nullable, magic-link actors have no account
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
