package repos

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

type PendingViewRepo interface {
	Increment(ctx context.Context, tx *gorm.DB, contentType types.ContentType, contentID int64) error
	ListAll(ctx context.Context, tx *gorm.DB) ([]*types.PendingView, error)
	Claim(ctx context.Context, tx *gorm.DB, row *types.PendingView) (bool, error)
}

type pendingViewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPendingViewRepo(db *gorm.DB, baseLog *logger.Logger) PendingViewRepo {
	return &pendingViewRepo{db: db, log: baseLog.With("repo", "PendingViewRepo")}
}

// Increment creates the buffer row at count=1 or bumps it atomically; the
// ON CONFLICT arithmetic keeps concurrent hits additive without a
// read-modify-write at the application layer.
func (pr *pendingViewRepo) Increment(ctx context.Context, tx *gorm.DB, contentType types.ContentType, contentID int64) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	now := time.Now()
	row := types.PendingView{
		ContentType: contentType,
		ContentID:   contentID,
		Count:       1,
		UpdatedAt:   now,
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "content_type"}, {Name: "content_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"count":      gorm.Expr("count + ?", 1),
				"updated_at": now,
			}),
		}).
		Create(&row).Error
}

func (pr *pendingViewRepo) ListAll(ctx context.Context, tx *gorm.DB) ([]*types.PendingView, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.PendingView
	if err := transaction.WithContext(ctx).Order("id ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Claim deletes the row only if its count still matches the snapshot taken by
// the flush job. A zero-row delete means another flush run claimed it, or more
// views landed since the snapshot; either way the caller must skip the row.
func (pr *pendingViewRepo) Claim(ctx context.Context, tx *gorm.DB, row *types.PendingView) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ? AND count = ?", row.ID, row.Count).
		Delete(&types.PendingView{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
