package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// RatingAggregates is the recomputed (count, average) pair for one content item.
type RatingAggregates struct {
	Count   int
	Average float64
}

type RatingRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64, value int) (created bool, err error)
	Aggregates(ctx context.Context, tx *gorm.DB, contentType types.ContentType, contentID int64) (RatingAggregates, error)
}

type ratingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRatingRepo(db *gorm.DB, baseLog *logger.Logger) RatingRepo {
	return &ratingRepo{db: db, log: baseLog.With("repo", "RatingRepo")}
}

// Upsert writes the user's rating, last-write-wins on the unique
// (user, variant, id) tuple.
func (rr *ratingRepo) Upsert(ctx context.Context, tx *gorm.DB, userID uuid.UUID, contentType types.ContentType, contentID int64, value int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}

	var existing types.ContentRating
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND content_type = ? AND content_id = ?", userID, contentType, contentID).
		First(&existing).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	created := errors.Is(err, gorm.ErrRecordNotFound)

	rating := types.ContentRating{
		UserID:      userID,
		ContentType: contentType,
		ContentID:   contentID,
		Value:       value,
		UpdatedAt:   time.Now(),
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "content_type"}, {Name: "content_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&rating).Error; err != nil {
		return false, err
	}
	return created, nil
}

func (rr *ratingRepo) Aggregates(ctx context.Context, tx *gorm.DB, contentType types.ContentType, contentID int64) (RatingAggregates, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var agg struct {
		Count   int
		Average float64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.ContentRating{}).
		Select("COUNT(*) AS count, COALESCE(AVG(value), 0) AS average").
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Scan(&agg).Error; err != nil {
		return RatingAggregates{}, err
	}
	return RatingAggregates{Count: agg.Count, Average: agg.Average}, nil
}
