package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/search"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// RatingService writes 1-5 star ratings, last-write-wins per user and item,
// and recomputes the denormalized (count, average) aggregates from the rating
// rows on every write so they can never drift.
type RatingService interface {
	Rate(ctx context.Context, userID uuid.UUID, contentType types.ContentType, contentID int64, value int) (created bool, err error)
}

type ratingService struct {
	db          *gorm.DB
	log         *logger.Logger
	ratingRepo  repos.RatingRepo
	contentRepo repos.ContentRepo
	indexer     search.Indexer
	cache       cache.Service
}

func NewRatingService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ratingRepo repos.RatingRepo,
	contentRepo repos.ContentRepo,
	indexer search.Indexer,
	cacheService cache.Service,
) RatingService {
	return &ratingService{
		db:          db,
		log:         baseLog.With("service", "RatingService"),
		ratingRepo:  ratingRepo,
		contentRepo: contentRepo,
		indexer:     indexer,
		cache:       cacheService,
	}
}

func (rs *ratingService) Rate(ctx context.Context, userID uuid.UUID, contentType types.ContentType, contentID int64, value int) (bool, error) {
	if value < 1 || value > 5 {
		return false, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}

	// 1) The target must exist; ratings on deleted content are a 404.
	rec, err := rs.contentRepo.GetByID(ctx, nil, contentType, contentID)
	if err != nil {
		return false, fmt.Errorf("load content: %w", err)
	}
	if rec == nil {
		return false, ErrNotFound
	}

	// 2) Upsert the rating and recompute aggregates in one transaction.
	var created bool
	err = rs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		c, err := rs.ratingRepo.Upsert(ctx, tx, userID, contentType, contentID, value)
		if err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		created = c

		agg, err := rs.ratingRepo.Aggregates(ctx, tx, contentType, contentID)
		if err != nil {
			return fmt.Errorf("recompute rating aggregates: %w", err)
		}
		if err := rs.contentRepo.UpdateRatingAggregates(ctx, tx, contentType, contentID, agg.Average, agg.Count); err != nil {
			return fmt.Errorf("store rating aggregates: %w", err)
		}
		return nil
	})
	if err != nil {
		rs.log.Error("Rate failed", "content_type", contentType, "content_id", contentID, "error", err)
		return false, err
	}

	// 3) Side effects off the request path: reindex with the new aggregates
	// and invalidate cached listings.
	rs.indexer.EnqueueIndex(contentType, contentID)
	rs.cache.BumpGeneration(ctx)

	return created, nil
}
