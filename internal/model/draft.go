package model

import (
	"time"

	"github.com/google/uuid"
)

// DraftEntry is one employee row inside an entity group of a draft.
type DraftEntry struct {
	EmployeeName string `json:"employee_name"`
	MenuItemID   string `json:"menu_item_id"`
	Notes        string `json:"notes,omitempty"`
}

// EntityGroup holds the per-entity composer state: the declared headcount,
// the entry list (len == Count), and the two orthogonal toggles.
type EntityGroup struct {
	Count      int          `json:"count"`
	Entries    []DraftEntry `json:"entries"`
	Anonymous  bool         `json:"anonymous"` // names forced to "Pegawai {entity}"
	SyncMenu   bool         `json:"sync_menu"` // all entries share SyncMenuID
	SyncMenuID string       `json:"sync_menu_id,omitempty"`
}

// DraftDocument is the full composer state: header fields plus one
// EntityGroup per entity category. It round-trips through jsonb unchanged.
type DraftDocument struct {
	Type         string                 `json:"type"`
	SubBidang    string                 `json:"sub_bidang"`
	JobTitle     string                 `json:"job_title"`
	DropPoint    string                 `json:"drop_point"`
	PicName      string                 `json:"pic_name"`
	PicPhone     string                 `json:"pic_phone"`
	RequiredDate *time.Time             `json:"required_date,omitempty"`
	Groups       map[string]EntityGroup `json:"groups"`
}

// ComposerDraft is the persisted autosave row: one draft per owner, stored
// as an opaque jsonb payload so the storage medium stays swappable.
type ComposerDraft struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerKey  string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"owner_key"`
	Payload   string    `gorm:"type:jsonb;not null" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedAt time.Time `json:"created_at"`
}
