package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalToken is a single-use magic-link credential bound to one request
// and one authority role. Tokens are never deleted; consumed rows stay
// behind as the approval audit trail.
type ApprovalToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Token     string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"token"`
	Type      string     `gorm:"type:varchar(20);not null" json:"type"` // SUPERVISOR, KITCHEN, ADMIN
	RequestID uuid.UUID  `gorm:"type:uuid;not null;index" json:"request_id"`
	IsUsed    bool       `gorm:"not null;default:false" json:"is_used"`
	UsedAt    *time.Time `json:"used_at"`
	ExpiresAt *time.Time `json:"expires_at"` // nil disables expiry
	CreatedAt time.Time  `json:"created_at"`
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *ApprovalToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
