package types

import (
	"time"

	"github.com/google/uuid"
)

// Bookmark marks a content item as saved by a user.
type Bookmark struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID   `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_bookmark_identity,priority:1" json:"user_id"`
	ContentType ContentType `gorm:"column:content_type;type:varchar(16);not null;uniqueIndex:idx_bookmark_identity,priority:2" json:"content_type"`
	ContentID   int64       `gorm:"column:content_id;not null;uniqueIndex:idx_bookmark_identity,priority:3" json:"content_id"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
}

func (Bookmark) TableName() string { return "bookmark" }
