package services

import (
	"context"
	"sync"

	"github.com/kitaphana/kitaphana-backend/internal/search"
	"github.com/kitaphana/kitaphana-backend/internal/types"
)

type indexCall struct {
	Op          string
	ContentType types.ContentType
	ContentID   int64
}

// stubIndexer records enqueued index work instead of talking to an engine.
type stubIndexer struct {
	mu    sync.Mutex
	calls []indexCall
}

var _ search.Indexer = (*stubIndexer)(nil)

func (s *stubIndexer) StartWorker(ctx context.Context) {}

func (s *stubIndexer) EnqueueIndex(contentType types.ContentType, contentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, indexCall{"index", contentType, contentID})
}

func (s *stubIndexer) EnqueueDelete(contentType types.ContentType, contentID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, indexCall{"delete", contentType, contentID})
}

func (s *stubIndexer) ReindexAll(ctx context.Context) error { return nil }

func (s *stubIndexer) Calls() []indexCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]indexCall, len(s.calls))
	copy(out, s.calls)
	return out
}
