package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/metrics"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/search"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// FlushReport summarizes one drain of the pending view buffer.
type FlushReport struct {
	Flushed int   // rows committed to the record store
	Missing int   // rows whose target record no longer exists
	Skipped int   // rows claimed by a concurrent run or still accumulating
	Errors  int   // rows that failed and remain for the next run
	Views   int64 // total view increments committed
}

// FlushService periodically drains the pending view buffer into the record
// store's view counters and triggers reindexing of affected items. Safe under
// overlapping runs: each row is claimed by a conditional delete inside its own
// transaction, and one poison row never blocks the rest.
type FlushService interface {
	Flush(ctx context.Context) FlushReport
	StartWorker(ctx context.Context, interval time.Duration)
}

type flushService struct {
	db              *gorm.DB
	log             *logger.Logger
	pendingViewRepo repos.PendingViewRepo
	contentRepo     repos.ContentRepo
	indexer         search.Indexer
	cache           cache.Service
}

func NewFlushService(
	db *gorm.DB,
	baseLog *logger.Logger,
	pendingViewRepo repos.PendingViewRepo,
	contentRepo repos.ContentRepo,
	indexer search.Indexer,
	cacheService cache.Service,
) FlushService {
	return &flushService{
		db:              db,
		log:             baseLog.With("service", "FlushService"),
		pendingViewRepo: pendingViewRepo,
		contentRepo:     contentRepo,
		indexer:         indexer,
		cache:           cacheService,
	}
}

func (fs *flushService) StartWorker(ctx context.Context, interval time.Duration) {
	go func() {
		fs.log.Info("Flush worker started", "interval", interval)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				fs.log.Info("Flush worker stopped")
				return
			case <-ticker.C:
				report := fs.Flush(ctx)
				if report.Flushed > 0 || report.Errors > 0 {
					fs.log.Info("Flush completed",
						"flushed", report.Flushed,
						"missing", report.Missing,
						"skipped", report.Skipped,
						"errors", report.Errors,
						"views", report.Views,
					)
				}
			}
		}
	}()
}

func (fs *flushService) Flush(ctx context.Context) FlushReport {
	var report FlushReport

	rows, err := fs.pendingViewRepo.ListAll(ctx, nil)
	if err != nil {
		fs.log.Error("Failed to list pending views", "error", err)
		report.Errors++
		return report
	}
	if len(rows) == 0 {
		return report
	}

	type reindexTarget struct {
		contentType types.ContentType
		contentID   int64
	}
	var toReindex []reindexTarget

	for _, row := range rows {
		var applied, missing, skipped bool

		err := fs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			// 1) Claim the row. Fails when a concurrent run took it or more
			// views landed since the snapshot; either way leave it alone.
			claimed, err := fs.pendingViewRepo.Claim(ctx, tx, row)
			if err != nil {
				return err
			}
			if !claimed {
				skipped = true
				return nil
			}

			// 2) Relative counter add; no read-modify-write.
			updated, err := fs.contentRepo.IncrementViews(ctx, tx, row.ContentType, row.ContentID, row.Count)
			if err != nil {
				return err
			}
			if !updated {
				// Record deleted after views accrued; drop the buffered count.
				missing = true
				return nil
			}
			applied = true
			return nil
		})
		if err != nil {
			fs.log.Error("Error flushing pending view", "content_type", row.ContentType, "content_id", row.ContentID, "count", row.Count, "error", err)
			metrics.FlushedRows.WithLabelValues("error").Inc()
			report.Errors++
			continue
		}

		switch {
		case skipped:
			metrics.FlushedRows.WithLabelValues("skipped").Inc()
			report.Skipped++
		case missing:
			fs.log.Warn("Flush target not found, dropping buffered views", "content_type", row.ContentType, "content_id", row.ContentID, "count", row.Count)
			metrics.FlushedRows.WithLabelValues("missing").Inc()
			report.Missing++
		case applied:
			metrics.FlushedRows.WithLabelValues("flushed").Inc()
			metrics.FlushedViews.Add(float64(row.Count))
			report.Flushed++
			report.Views += row.Count
			toReindex = append(toReindex, reindexTarget{row.ContentType, row.ContentID})
		}
	}

	// Reindex after the transactions commit so the documents pick up the new
	// counters.
	for _, target := range toReindex {
		fs.indexer.EnqueueIndex(target.contentType, target.contentID)
	}
	if report.Flushed > 0 {
		fs.cache.BumpGeneration(ctx)
	}

	return report
}
