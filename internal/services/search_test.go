package services

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/repos/testutil"
	"github.com/kitaphana/kitaphana-backend/internal/search"
)

type stubSearchClient struct {
	pingOK   bool
	response []byte
	err      error

	searchCalls int
	lastIndices []string
}

var _ search.Client = (*stubSearchClient)(nil)

func (s *stubSearchClient) IndexDocument(ctx context.Context, index, id string, doc interface{}) error {
	return nil
}
func (s *stubSearchClient) DeleteDocument(ctx context.Context, index, id string) error { return nil }
func (s *stubSearchClient) Ping(ctx context.Context) bool                              { return s.pingOK }
func (s *stubSearchClient) RecreateIndex(ctx context.Context, index string, mapping interface{}) error {
	return nil
}
func (s *stubSearchClient) Refresh(ctx context.Context, index string) error { return nil }

func (s *stubSearchClient) Search(ctx context.Context, indices []string, body interface{}) ([]byte, error) {
	s.searchCalls++
	s.lastIndices = indices
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

const stubEngineResponse = `{
  "hits": {
    "total": {"value": 10},
    "hits": [
      {"_index": "articles", "_id": "1", "_score": 3.0, "_source": {"title": "A", "author": "X", "language": "tm"}},
      {"_index": "books", "_id": "2", "_score": 1.0, "_source": {"title": "B", "author": "Y", "language": "tm"}}
    ]
  }
}`

func TestSearchHappyPath(t *testing.T) {
	log := testutil.Logger(t)
	client := &stubSearchClient{pingOK: true, response: []byte(stubEngineResponse)}
	svc := NewSearchService(log, client, cache.NewNoop(), 5*time.Minute)

	resp, err := svc.Search(context.Background(), search.Request{Query: "watan", Page: 1, PageSize: 2}, "/api/v1/search", url.Values{"q": {"watan"}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Count != 10 || len(resp.Results) != 2 {
		t.Fatalf("count=%d results=%d", resp.Count, len(resp.Results))
	}
	if !resp.HasNext {
		t.Fatalf("a full page implies has_next")
	}
	if resp.Query != "watan" || resp.Page != 1 {
		t.Fatalf("echo fields: %+v", resp)
	}
	if len(client.lastIndices) != 3 {
		t.Fatalf("unfiltered search must span all variants, got %v", client.lastIndices)
	}
}

func TestSearchUnavailableWhenPingFails(t *testing.T) {
	log := testutil.Logger(t)
	client := &stubSearchClient{pingOK: false}
	svc := NewSearchService(log, client, cache.NewNoop(), 5*time.Minute)

	_, err := svc.Search(context.Background(), search.Request{Query: "x", Page: 1, PageSize: 10}, "/api/v1/search", nil)
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable", err)
	}
	if client.searchCalls != 0 {
		t.Fatalf("engine must not be queried when the ping fails")
	}
}

func TestSearchWrapsEngineErrors(t *testing.T) {
	log := testutil.Logger(t)
	client := &stubSearchClient{pingOK: true, err: errors.New("boom")}
	svc := NewSearchService(log, client, cache.NewNoop(), 5*time.Minute)

	_, err := svc.Search(context.Background(), search.Request{Query: "x", Page: 1, PageSize: 10}, "/api/v1/search", nil)
	if !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable wrap", err)
	}
}

func TestSearchBreakerOpensAfterRepeatedFailures(t *testing.T) {
	log := testutil.Logger(t)
	client := &stubSearchClient{pingOK: true, err: errors.New("down")}
	svc := NewSearchService(log, client, cache.NewNoop(), 5*time.Minute)

	req := search.Request{Query: "x", Page: 1, PageSize: 10}
	for i := 0; i < 6; i++ {
		_, _ = svc.Search(context.Background(), req, "/api/v1/search", nil)
	}
	callsAtOpen := client.searchCalls

	// Once open, requests short-circuit without touching the engine.
	if _, err := svc.Search(context.Background(), req, "/api/v1/search", nil); !errors.Is(err, ErrSearchUnavailable) {
		t.Fatalf("err = %v, want ErrSearchUnavailable", err)
	}
	if client.searchCalls != callsAtOpen {
		t.Fatalf("open breaker must not call the engine")
	}
}

func TestSearchLastPageHasNextFalse(t *testing.T) {
	log := testutil.Logger(t)
	client := &stubSearchClient{pingOK: true, response: []byte(stubEngineResponse)}
	svc := NewSearchService(log, client, cache.NewNoop(), 5*time.Minute)

	resp, err := svc.Search(context.Background(), search.Request{Query: "watan", Page: 1, PageSize: 10}, "/api/v1/search", nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.HasNext {
		t.Fatalf("short page implies no next page")
	}
}
