package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// ViewerIdentity is either an authenticated user or an anonymous session,
// never both.
type ViewerIdentity struct {
	UserID     *uuid.UUID
	SessionKey *string
}

func (vi ViewerIdentity) Valid() bool {
	return (vi.UserID != nil) != (vi.SessionKey != nil)
}

type ViewRecordRepo interface {
	SeenSince(ctx context.Context, tx *gorm.DB, identity ViewerIdentity, contentType types.ContentType, contentID int64, cutoff time.Time) (bool, error)
	Upsert(ctx context.Context, tx *gorm.DB, identity ViewerIdentity, contentType types.ContentType, contentID int64, seenAt time.Time) error
}

type viewRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewViewRecordRepo(db *gorm.DB, baseLog *logger.Logger) ViewRecordRepo {
	return &viewRecordRepo{db: db, log: baseLog.With("repo", "ViewRecordRepo")}
}

func (vr *viewRecordRepo) SeenSince(ctx context.Context, tx *gorm.DB, identity ViewerIdentity, contentType types.ContentType, contentID int64, cutoff time.Time) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	if !identity.Valid() {
		return false, fmt.Errorf("viewer identity must carry exactly one of user id or session key")
	}

	q := transaction.WithContext(ctx).
		Model(&types.ViewRecord{}).
		Where("content_type = ? AND content_id = ? AND last_seen >= ?", contentType, contentID, cutoff)
	if identity.UserID != nil {
		q = q.Where("user_id = ?", *identity.UserID)
	} else {
		q = q.Where("session_key = ?", *identity.SessionKey)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Upsert refreshes last_seen for the identity tuple, inserting the row on
// first sight. The two partial unique indexes (user vs session) make the
// conflict target depend on which identity leg is set.
func (vr *viewRecordRepo) Upsert(ctx context.Context, tx *gorm.DB, identity ViewerIdentity, contentType types.ContentType, contentID int64, seenAt time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}
	if !identity.Valid() {
		return fmt.Errorf("viewer identity must carry exactly one of user id or session key")
	}

	row := types.ViewRecord{
		UserID:      identity.UserID,
		SessionKey:  identity.SessionKey,
		ContentType: contentType,
		ContentID:   contentID,
		LastSeen:    seenAt,
	}
	conflict := clause.OnConflict{
		DoUpdates: clause.Assignments(map[string]interface{}{"last_seen": seenAt}),
	}
	if identity.UserID != nil {
		conflict.Columns = []clause.Column{{Name: "user_id"}, {Name: "content_type"}, {Name: "content_id"}}
	} else {
		conflict.Columns = []clause.Column{{Name: "session_key"}, {Name: "content_type"}, {Name: "content_id"}}
	}
	return transaction.WithContext(ctx).Clauses(conflict).Create(&row).Error
}
