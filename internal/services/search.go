package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/kitaphana/kitaphana-backend/internal/cache"
	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/metrics"
	"github.com/kitaphana/kitaphana-backend/internal/search"
)

const pingCacheTTL = 5 * time.Second

// SearchResponse is a page of ranked results.
type SearchResponse struct {
	Count    int64           `json:"count"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasNext  bool            `json:"has_next"`
	Results  []search.Result `json:"results"`
	Query    string          `json:"query"`
}

// SearchService answers search requests from the result cache when possible,
// otherwise via the query builder against the search index. When the index is
// unreachable (cached ping failure or open breaker) it reports
// ErrSearchUnavailable; the record store is never used as a fallback search
// engine.
type SearchService interface {
	Search(ctx context.Context, req search.Request, path string, params url.Values) (*SearchResponse, error)
}

type searchService struct {
	log      *logger.Logger
	client   search.Client
	cache    cache.Service
	breaker  *gobreaker.CircuitBreaker[[]byte]
	cacheTTL time.Duration
}

func NewSearchService(baseLog *logger.Logger, client search.Client, cacheService cache.Service, cacheTTL time.Duration) SearchService {
	serviceLog := baseLog.With("service", "SearchService")
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "search-index",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			serviceLog.Warn("Search breaker state changed", "from", from.String(), "to", to.String())
		},
	})
	return &searchService{
		log:      serviceLog,
		client:   client,
		cache:    cacheService,
		breaker:  breaker,
		cacheTTL: cacheTTL,
	}
}

func (ss *searchService) Search(ctx context.Context, req search.Request, path string, params url.Values) (*SearchResponse, error) {
	// 1) Result cache, keyed by the generation-prefixed query signature.
	key := cache.SearchKey(ss.cache.Generation(ctx), path, params)
	var cached SearchResponse
	if ss.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	// 2) Availability gate: ping result is cached briefly so a down index
	// doesn't cost a probe per request.
	if !ss.indexReachable(ctx) {
		metrics.SearchRequests.WithLabelValues("unavailable").Inc()
		return nil, ErrSearchUnavailable
	}

	// 3) Execute behind the breaker.
	body := search.BuildSearchBody(req)
	raw, err := ss.breaker.Execute(func() ([]byte, error) {
		return ss.client.Search(ctx, req.Indices(), body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.SearchRequests.WithLabelValues("unavailable").Inc()
			return nil, ErrSearchUnavailable
		}
		ss.log.Error("Search execution failed", "error", err)
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	total, results, err := search.ParseSearchResponse(raw)
	if err != nil {
		metrics.SearchRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	resp := &SearchResponse{
		Count:    total,
		Page:     page,
		PageSize: req.PageSize,
		HasNext:  len(results) == req.PageSize,
		Results:  results,
		Query:    req.Query,
	}

	// 4) Store for subsequent identical queries; failures here are invisible.
	ss.cache.SetJSON(ctx, key, resp, ss.cacheTTL)
	metrics.SearchRequests.WithLabelValues("ok").Inc()
	return resp, nil
}

func (ss *searchService) indexReachable(ctx context.Context) bool {
	if ok, cached := ss.cache.PingState(ctx); cached {
		return ok
	}
	ok := ss.client.Ping(ctx)
	ss.cache.SetPingState(ctx, ok, pingCacheTTL)
	return ok
}
