package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestType Enum Simulation
const (
	TypeMeal       = "MEAL"
	TypeTransport  = "TRANSPORT"
	TypeRoom       = "ROOM"
	TypeStationary = "STATIONARY"
)

// RequestStatus constants: the lifecycle state vocabulary exposed to clients
const (
	StatusPendingSupervisor  = "PENDING_SUPERVISOR"
	StatusPendingGA          = "PENDING_GA"
	StatusPendingKitchen     = "PENDING_KITCHEN"
	StatusInProgress         = "IN_PROGRESS"
	StatusCompleted          = "COMPLETED"
	StatusRejectedSupervisor = "REJECTED_SUPERVISOR"
	StatusRejectedGA         = "REJECTED_GA"
	StatusRejectedKitchen    = "REJECTED_KITCHEN"
	StatusCancelled          = "CANCELLED"
)

// Employee entity categories (organizational origin of an order entry)
const (
	EntityPLNIP = "PLNIP"
	EntityIPS   = "IPS"
	EntityKOP   = "KOP"
	EntityRSU   = "RSU"
	EntityMITRA = "MITRA"
)

// Entities lists the valid entity categories in display order.
var Entities = []string{EntityPLNIP, EntityIPS, EntityKOP, EntityRSU, EntityMITRA}

// ServiceRequest is the canonical request document owning its order lines,
// approval tokens and delivery proof. Status only moves forward along the
// workflow graph; requestDate, pic and supervisor fields are immutable
// after creation.
type ServiceRequest struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestCode     string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"request_code"`
	Type            string          `gorm:"type:varchar(20);not null" json:"type"` // MEAL, TRANSPORT, ROOM, STATIONARY
	Status          string          `gorm:"type:varchar(30);not null;index" json:"status"`
	RequestDate     time.Time       `gorm:"not null" json:"request_date"`
	RequiredDate    time.Time       `gorm:"not null" json:"required_date"`
	MealSlot        string          `gorm:"type:varchar(20)" json:"meal_slot"` // Sarapan, Makan Siang, Makan Sore, Makan Malam
	DropPoint       string          `gorm:"type:text;not null" json:"drop_point"`
	PicName         string          `gorm:"type:varchar(255);not null" json:"pic_name"`
	PicPhone        string          `gorm:"type:varchar(20);not null" json:"pic_phone"`
	SubBidang       string          `gorm:"type:varchar(255);not null" json:"sub_bidang"`
	JobTitle        string          `gorm:"type:varchar(255)" json:"job_title"`
	SupervisorName  string          `gorm:"type:varchar(255);not null" json:"supervisor_name"`
	SupervisorPhone string          `gorm:"type:varchar(20);not null" json:"supervisor_phone"`
	EstimatedCost   decimal.Decimal `gorm:"type:decimal(14,2);default:0" json:"estimated_cost"`
	RejectionNote   string          `gorm:"type:text" json:"rejection_note"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid;index" json:"created_by"`
	Creator         *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	EmployeeOrders  []EmployeeOrder `gorm:"foreignKey:RequestID" json:"employee_orders"`
	ApprovalTokens  []ApprovalToken `gorm:"foreignKey:RequestID" json:"approval_tokens,omitempty"`
	Proof           *DeliveryProof  `gorm:"foreignKey:RequestID" json:"proof,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// EmployeeOrder is one employee's order line within a request. Position
// preserves submission order; lines are never reordered.
type EmployeeOrder struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"request_id"`
	EmployeeName string      `gorm:"type:varchar(255);not null" json:"employee_name"`
	Entity       string      `gorm:"type:varchar(20);not null" json:"entity"` // PLNIP, IPS, KOP, RSU, MITRA
	Position     int         `gorm:"type:int;not null" json:"position"`
	Items        []OrderItem `gorm:"foreignKey:EmployeeOrderID" json:"items"`
}

// OrderItem references a catalog item picked for one employee. The composer
// flow emits exactly one item of quantity 1 per employee line.
type OrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmployeeOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"employee_order_id"`
	MenuItemID      uuid.UUID `gorm:"type:uuid;not null;index" json:"menu_item_id"`
	MenuItem        MenuItem  `gorm:"foreignKey:MenuItemID" json:"-"`
	Quantity        int       `gorm:"type:int;not null" json:"quantity"`
	Notes           string    `gorm:"type:text" json:"notes"`
}
