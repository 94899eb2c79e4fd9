package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/metrics"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

// ViewResult reports whether a view hit was counted.
type ViewResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

const ReasonAlreadyCounted = "already_counted"

// ViewService deduplicates view hits per identity within the dedupe window
// and buffers accepted hits into the pending view table. Dedupe is
// best-effort anti-abuse, not exact-once counting: a short race may register
// the same identity twice, and the pending increment stays additive either way.
type ViewService interface {
	RegisterView(ctx context.Context, identity repos.ViewerIdentity, contentType types.ContentType, contentID int64) (ViewResult, error)
}

type viewService struct {
	db              *gorm.DB
	log             *logger.Logger
	viewRecordRepo  repos.ViewRecordRepo
	pendingViewRepo repos.PendingViewRepo
	dedupeTTL       time.Duration
}

func NewViewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	viewRecordRepo repos.ViewRecordRepo,
	pendingViewRepo repos.PendingViewRepo,
	dedupeTTL time.Duration,
) ViewService {
	return &viewService{
		db:              db,
		log:             baseLog.With("service", "ViewService"),
		viewRecordRepo:  viewRecordRepo,
		pendingViewRepo: pendingViewRepo,
		dedupeTTL:       dedupeTTL,
	}
}

func (vs *viewService) RegisterView(ctx context.Context, identity repos.ViewerIdentity, contentType types.ContentType, contentID int64) (ViewResult, error) {
	now := time.Now()
	cutoff := now.Add(-vs.dedupeTTL)

	// 1) Within the window? Reject without side effects; last_seen is not
	// refreshed, so the viewer becomes countable again exactly one window
	// after the last counted view.
	seen, err := vs.viewRecordRepo.SeenSince(ctx, nil, identity, contentType, contentID, cutoff)
	if err != nil {
		metrics.ViewHits.WithLabelValues("error").Inc()
		return ViewResult{}, fmt.Errorf("look up view record: %w", err)
	}
	if seen {
		metrics.ViewHits.WithLabelValues("deduplicated").Inc()
		return ViewResult{Accepted: false, Reason: ReasonAlreadyCounted}, nil
	}

	// 2) Record the sighting. If this fails the pending buffer is left
	// untouched so no increment can leak without its ledger row.
	if err := vs.viewRecordRepo.Upsert(ctx, nil, identity, contentType, contentID, now); err != nil {
		metrics.ViewHits.WithLabelValues("error").Inc()
		return ViewResult{}, fmt.Errorf("upsert view record: %w", err)
	}

	// 3) Buffer the increment.
	if err := vs.pendingViewRepo.Increment(ctx, nil, contentType, contentID); err != nil {
		metrics.ViewHits.WithLabelValues("error").Inc()
		return ViewResult{}, fmt.Errorf("increment pending views: %w", err)
	}

	metrics.ViewHits.WithLabelValues("accepted").Inc()
	return ViewResult{Accepted: true}, nil
}
