package services

import (
	"context"
	"testing"
	"time"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/repos/testutil"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

func TestFlushAppliesBufferedViews(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	contentRepo := repos.NewContentRepo(db, log)
	pendingViewRepo := repos.NewPendingViewRepo(db, log)
	indexer := &stubIndexer{}
	svc := NewFlushService(db, log, pendingViewRepo, contentRepo, indexer, cache.NewNoop())

	rec := testutil.SeedContent(t, ctx, db, types.ContentTypeArticle, "flush target")
	if err := db.Model(&types.ContentRecord{}).Where("id = ?", rec.ID).Update("views", 5).Error; err != nil {
		t.Fatalf("seed views: %v", err)
	}
	pending := &types.PendingView{
		ContentType: types.ContentTypeArticle,
		ContentID:   rec.ID,
		Count:       10,
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("seed pending view: %v", err)
	}

	report := svc.Flush(ctx)
	if report.Flushed != 1 || report.Views != 10 || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	var got types.ContentRecord
	if err := db.First(&got, rec.ID).Error; err != nil {
		t.Fatalf("load record: %v", err)
	}
	if got.Views != 15 {
		t.Fatalf("views = %d, want 15 (relative add, not overwrite)", got.Views)
	}

	var remaining int64
	if err := db.Model(&types.PendingView{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("pending rows = %d, want 0", remaining)
	}

	calls := indexer.Calls()
	if len(calls) != 1 || calls[0].Op != "index" || calls[0].ContentID != rec.ID {
		t.Fatalf("unexpected index calls: %+v", calls)
	}
}

func TestFlushDropsBufferForMissingTarget(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	contentRepo := repos.NewContentRepo(db, log)
	pendingViewRepo := repos.NewPendingViewRepo(db, log)
	indexer := &stubIndexer{}
	svc := NewFlushService(db, log, pendingViewRepo, contentRepo, indexer, cache.NewNoop())

	pending := &types.PendingView{
		ContentType: types.ContentTypeBook,
		ContentID:   424242,
		Count:       3,
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("seed pending view: %v", err)
	}

	report := svc.Flush(ctx)
	if report.Missing != 1 || report.Flushed != 0 || report.Errors != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	var remaining int64
	if err := db.Model(&types.PendingView{}).Count(&remaining).Error; err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("pending rows = %d, want 0 (buffer dropped with target)", remaining)
	}
	if calls := indexer.Calls(); len(calls) != 0 {
		t.Fatalf("no index calls expected, got %+v", calls)
	}
}

func TestFlushSkipsRowClaimedElsewhere(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	pendingViewRepo := repos.NewPendingViewRepo(db, log)

	pending := &types.PendingView{
		ContentType: types.ContentTypeArticle,
		ContentID:   7,
		Count:       2,
		UpdatedAt:   time.Now(),
	}
	if err := db.Create(pending).Error; err != nil {
		t.Fatalf("seed pending view: %v", err)
	}

	// More views land after the flush snapshot: the claim must fail and leave
	// the row for the next run.
	stale := &types.PendingView{ID: pending.ID, ContentType: pending.ContentType, ContentID: pending.ContentID, Count: 2}
	if err := pendingViewRepo.Increment(ctx, nil, pending.ContentType, pending.ContentID); err != nil {
		t.Fatalf("increment: %v", err)
	}
	claimed, err := pendingViewRepo.Claim(ctx, nil, stale)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed {
		t.Fatalf("stale claim should fail")
	}

	var got types.PendingView
	if err := db.First(&got, pending.ID).Error; err != nil {
		t.Fatalf("row should survive stale claim: %v", err)
	}
	if got.Count != 3 {
		t.Fatalf("count = %d, want 3", got.Count)
	}

	// With the live snapshot the claim succeeds.
	got2 := got
	claimed, err = pendingViewRepo.Claim(ctx, nil, &got2)
	if err != nil || !claimed {
		t.Fatalf("live claim: claimed=%v err=%v", claimed, err)
	}
}
