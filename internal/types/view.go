package types

import (
	"time"

	"github.com/google/uuid"
)

// ViewRecord is the dedupe ledger: one row per (identity, variant, id) where
// identity is either an authenticated user id or an anonymous session key,
// never both. A row older than the dedupe window counts as a fresh view and
// gets its last_seen refreshed.
type ViewRecord struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      *uuid.UUID  `gorm:"column:user_id;type:uuid;uniqueIndex:idx_view_record_user,priority:1" json:"user_id,omitempty"`
	SessionKey  *string     `gorm:"column:session_key;size:64;uniqueIndex:idx_view_record_session,priority:1" json:"session_key,omitempty"`
	ContentType ContentType `gorm:"column:content_type;type:varchar(16);not null;uniqueIndex:idx_view_record_user,priority:2;uniqueIndex:idx_view_record_session,priority:2" json:"content_type"`
	ContentID   int64       `gorm:"column:content_id;not null;uniqueIndex:idx_view_record_user,priority:3;uniqueIndex:idx_view_record_session,priority:3" json:"content_id"`
	LastSeen    time.Time   `gorm:"column:last_seen;not null;index" json:"last_seen"`
}

func (ViewRecord) TableName() string { return "view_record" }

// PendingView buffers not-yet-committed view increments per content item.
// Rows are created at count=1 on the first buffered hit, incremented
// atomically afterwards and drained by the flush job.
type PendingView struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	ContentType ContentType `gorm:"column:content_type;type:varchar(16);not null;uniqueIndex:idx_pending_view_target,priority:1" json:"content_type"`
	ContentID   int64       `gorm:"column:content_id;not null;uniqueIndex:idx_pending_view_target,priority:2" json:"content_id"`
	Count       int64       `gorm:"column:count;not null;default:0" json:"count"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (PendingView) TableName() string { return "pending_view" }
