package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubBidang is an organizational sub-unit. Its designated supervisor (ASMAN)
// performs the first approval stage for requests raised by the unit.
type SubBidang struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name            string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	SupervisorName  string         `gorm:"type:varchar(255);not null" json:"supervisor_name"`
	SupervisorPhone string         `gorm:"type:varchar(20);not null" json:"supervisor_phone"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Employee is a directory record used to prefill composer entries. Entity
// tags the employee's organizational category (PLNIP, IPS, KOP, RSU, MITRA).
type Employee struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Entity      string         `gorm:"type:varchar(20);not null;index" json:"entity"`
	SubBidangID *uuid.UUID     `gorm:"type:uuid;index" json:"sub_bidang_id"`
	SubBidang   *SubBidang     `gorm:"foreignKey:SubBidangID" json:"sub_bidang,omitempty"`
	JobTitle    string         `gorm:"type:varchar(255)" json:"job_title"`
	Phone       string         `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
