package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Meal slot names derived from the required-date hour of day.
const (
	SlotSarapan    = "Sarapan"
	SlotMakanSiang = "Makan Siang"
	SlotMakanSore  = "Makan Sore"
	SlotMakanMalam = "Makan Malam"
)

// MenuItem is an orderable catalog entry. Availability is checked at
// selection time; a request never owns catalog rows.
type MenuItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Category    string          `gorm:"type:varchar(100);not null;index" json:"category"` // Makanan Berat, Snack, Minuman
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
