package search

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/metrics"
	"github.com/kitaphana/kitaphana-backend/internal/repos"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

const (
	indexQueueSize   = 1024
	indexMaxAttempts = 5
	reindexBatchSize = 200
)

type indexOp string

const (
	opIndex  indexOp = "index"
	opDelete indexOp = "delete"
)

type indexTask struct {
	Op          indexOp
	ContentType types.ContentType
	ContentID   int64
}

// Indexer keeps the search index eventually consistent with the record store.
// Enqueue* never block and never fail into the caller's request path; the
// worker retries transient engine errors with bounded exponential backoff and
// drops documents only after the retry budget is spent (visible via metrics
// and logs).
type Indexer interface {
	StartWorker(ctx context.Context)
	EnqueueIndex(contentType types.ContentType, contentID int64)
	EnqueueDelete(contentType types.ContentType, contentID int64)
	ReindexAll(ctx context.Context) error
}

type indexer struct {
	log         *logger.Logger
	client      Client
	contentRepo repos.ContentRepo
	tasks       chan indexTask
}

func NewIndexer(baseLog *logger.Logger, client Client, contentRepo repos.ContentRepo) Indexer {
	return &indexer{
		log:         baseLog.With("service", "Indexer"),
		client:      client,
		contentRepo: contentRepo,
		tasks:       make(chan indexTask, indexQueueSize),
	}
}

func (i *indexer) StartWorker(ctx context.Context) {
	go func() {
		i.log.Info("Index synchronizer worker started")
		for {
			select {
			case <-ctx.Done():
				i.log.Info("Index synchronizer worker stopped")
				return
			case task := <-i.tasks:
				i.process(ctx, task)
			}
		}
	}()
}

func (i *indexer) EnqueueIndex(contentType types.ContentType, contentID int64) {
	i.enqueue(indexTask{Op: opIndex, ContentType: contentType, ContentID: contentID})
}

func (i *indexer) EnqueueDelete(contentType types.ContentType, contentID int64) {
	i.enqueue(indexTask{Op: opDelete, ContentType: contentType, ContentID: contentID})
}

func (i *indexer) enqueue(task indexTask) {
	select {
	case i.tasks <- task:
	default:
		i.log.Warn("Index queue full, dropping task", "op", task.Op, "content_type", task.ContentType, "content_id", task.ContentID)
		metrics.IndexOps.WithLabelValues(string(task.Op), "overflow").Inc()
	}
}

func (i *indexer) process(ctx context.Context, task indexTask) {
	docID := strconv.FormatInt(task.ContentID, 10)
	index := task.ContentType.IndexName()

	var doc map[string]interface{}
	if task.Op == opIndex {
		rec, err := i.contentRepo.GetByID(ctx, nil, task.ContentType, task.ContentID)
		if err != nil {
			i.log.Error("Failed to load record for indexing", "content_type", task.ContentType, "content_id", task.ContentID, "error", err)
			metrics.IndexOps.WithLabelValues(string(task.Op), "dropped").Inc()
			return
		}
		if rec == nil {
			// Deleted between trigger and processing; nothing to index.
			i.log.Warn("Record not found for indexing", "content_type", task.ContentType, "content_id", task.ContentID)
			metrics.IndexOps.WithLabelValues(string(task.Op), "dropped").Inc()
			return
		}
		doc = BuildDocument(rec)
	}

	attempt := 0
	operation := func() error {
		attempt++
		var err error
		if task.Op == opIndex {
			err = i.client.IndexDocument(ctx, index, docID, doc)
		} else {
			err = i.client.DeleteDocument(ctx, index, docID)
		}
		if err == nil {
			return nil
		}
		var se *StatusError
		if errors.As(err, &se) && se.Permanent() {
			return backoff.Permanent(err)
		}
		metrics.IndexOps.WithLabelValues(string(task.Op), "retried").Inc()
		i.log.Warn("Index operation failed, will retry", "op", task.Op, "index", index, "doc_id", docID, "attempt", attempt, "error", err)
		return err
	}

	if err := backoff.Retry(operation, i.newBackOff(ctx)); err != nil {
		i.log.Error("Index operation dropped after retries", "op", task.Op, "index", index, "doc_id", docID, "attempts", attempt, "error", err)
		metrics.IndexOps.WithLabelValues(string(task.Op), "dropped").Inc()
		return
	}
	metrics.IndexOps.WithLabelValues(string(task.Op), "ok").Inc()
}

func (i *indexer) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, indexMaxAttempts-1), ctx)
}

// ReindexAll recreates every variant index with fresh mappings and bulk
// re-indexes all records, one worker per variant.
func (i *indexer) ReindexAll(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, contentType := range types.AllContentTypes() {
		g.Go(func() error {
			index := contentType.IndexName()
			if err := i.client.RecreateIndex(gctx, index, IndexMapping()); err != nil {
				return err
			}

			total := 0
			err := i.contentRepo.FindInBatches(gctx, nil, contentType, reindexBatchSize, func(recs []*types.ContentRecord) error {
				for _, rec := range recs {
					docID := strconv.FormatInt(rec.ID, 10)
					if err := i.client.IndexDocument(gctx, index, docID, BuildDocument(rec)); err != nil {
						i.log.Error("Reindex failed for record", "index", index, "doc_id", docID, "error", err)
						continue
					}
					total++
				}
				return nil
			})
			if err != nil {
				return err
			}

			if err := i.client.Refresh(gctx, index); err != nil {
				i.log.Warn("Index refresh failed", "index", index, "error", err)
			}
			i.log.Info("Reindexed collection", "index", index, "documents", total)
			return nil
		})
	}
	return g.Wait()
}
