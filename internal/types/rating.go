package types

import (
	"time"

	"github.com/google/uuid"
)

// ContentRating is a single user's 1-5 rating of a content item,
// last-write-wins per (user, variant, id). Aggregates are recomputed from
// these rows on every write, never kept as a running average.
type ContentRating struct {
	ID          int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uuid.UUID   `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_rating_identity,priority:1" json:"user_id"`
	ContentType ContentType `gorm:"column:content_type;type:varchar(16);not null;uniqueIndex:idx_rating_identity,priority:2;index:idx_rating_target" json:"content_type"`
	ContentID   int64       `gorm:"column:content_id;not null;uniqueIndex:idx_rating_identity,priority:3;index:idx_rating_target" json:"content_id"`
	Value       int         `gorm:"column:value;not null" json:"value"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}

func (ContentRating) TableName() string { return "content_rating" }
