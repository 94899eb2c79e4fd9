package services

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/repos/testutil"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func newRatingFixture(t *testing.T) (RatingService, *types.ContentRecord, *stubIndexer, context.Context, func(int64) types.ContentRecord) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	contentRepo := repos.NewContentRepo(db, log)
	ratingRepo := repos.NewRatingRepo(db, log)
	indexer := &stubIndexer{}
	svc := NewRatingService(db, log, ratingRepo, contentRepo, indexer, cache.NewNoop())

	rec := testutil.SeedContent(t, ctx, db, types.ContentTypeBook, "rated book")

	load := func(id int64) types.ContentRecord {
		var got types.ContentRecord
		if err := db.First(&got, id).Error; err != nil {
			t.Fatalf("load record: %v", err)
		}
		return got
	}
	return svc, rec, indexer, ctx, load
}

func TestRateRecomputesAggregates(t *testing.T) {
	svc, rec, indexer, ctx, load := newRatingFixture(t)

	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, value := range []int{5, 3, 4} {
		created, err := svc.Rate(ctx, users[i], types.ContentTypeBook, rec.ID, value)
		if err != nil {
			t.Fatalf("Rate %d: %v", value, err)
		}
		if !created {
			t.Fatalf("first rating by user %d should report created", i)
		}
	}

	got := load(rec.ID)
	if got.RatingCount != 3 {
		t.Fatalf("rating_count = %d, want 3", got.RatingCount)
	}
	if math.Abs(got.AverageRating-4.0) > 1e-9 {
		t.Fatalf("average_rating = %f, want 4.0", got.AverageRating)
	}

	// Re-rating replaces the old value and the average follows.
	created, err := svc.Rate(ctx, users[1], types.ContentTypeBook, rec.ID, 1)
	if err != nil {
		t.Fatalf("re-rate: %v", err)
	}
	if created {
		t.Fatalf("re-rating should not report created")
	}

	got = load(rec.ID)
	if got.RatingCount != 3 {
		t.Fatalf("rating_count after re-rate = %d, want 3", got.RatingCount)
	}
	want := 10.0 / 3.0
	if math.Abs(got.AverageRating-want) > 1e-9 {
		t.Fatalf("average_rating = %f, want %f", got.AverageRating, want)
	}

	if calls := indexer.Calls(); len(calls) != 4 {
		t.Fatalf("index calls = %d, want 4 (one per write)", len(calls))
	}
}

func TestRateRejectsOutOfRangeValue(t *testing.T) {
	svc, rec, _, ctx, _ := newRatingFixture(t)

	for _, value := range []int{0, 6, -1} {
		if _, err := svc.Rate(ctx, uuid.New(), types.ContentTypeBook, rec.ID, value); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("value %d: err = %v, want ErrInvalidInput", value, err)
		}
	}
}

func TestRateMissingContent(t *testing.T) {
	svc, _, _, ctx, _ := newRatingFixture(t)

	if _, err := svc.Rate(ctx, uuid.New(), types.ContentTypeBook, 999999, 4); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
