package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryProof is the photographic proof-of-delivery attached to the
// COMPLETED transition. Created once, immutable thereafter. PhotoURL is set
// when the image was uploaded to S3; otherwise the raw bytes stay in
// ImageData.
type DeliveryProof struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"request_id"`
	PhotoURL   string    `gorm:"type:text" json:"photo_url"`
	PhotoHash  string    `gorm:"type:varchar(64)" json:"photo_hash"` // SHA-256 hex of the image bytes
	ImageData  []byte    `gorm:"type:bytea" json:"-"`
	UploadedBy string    `gorm:"type:varchar(255)" json:"uploaded_by"`
	CapturedAt time.Time `gorm:"not null" json:"captured_at"`
	CreatedAt  time.Time `json:"created_at"`
}
