package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kitaphana/kitaphana-backend/internal/logger"
	"github.com/kitaphana/kitaphana-backend/internal/metrics"
	"github.com/kitaphana/kitaphana-backend/internal/utils"
)

// Service is the shared key-value cache: search/listing result cache, the
// global cache-generation counter and the search-engine ping cache. It is a
// best-effort layer; every failure degrades to a miss and never surfaces to
// the caller.
type Service interface {
	GetJSON(ctx context.Context, key string, dest interface{}) bool
	SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Generation(ctx context.Context) int64
	BumpGeneration(ctx context.Context)
	PingState(ctx context.Context) (ok bool, cached bool)
	SetPingState(ctx context.Context, ok bool, ttl time.Duration)
	Healthy(ctx context.Context) bool
}

type service struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewService(log *logger.Logger) (Service, error) {
	serviceLog := log.With("service", "CacheService")

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "localhost:6379", log))
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &service{log: serviceLog, rdb: rdb}, nil
}

func (s *service) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			s.log.Debug("Cache get failed", "key", key, "error", err)
			metrics.CacheRequests.WithLabelValues("error").Inc()
			return false
		}
		metrics.CacheRequests.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.log.Warn("Cache entry not decodable, dropping", "key", key, "error", err)
		_ = s.rdb.Del(ctx, key).Err()
		metrics.CacheRequests.WithLabelValues("error").Inc()
		return false
	}
	metrics.CacheRequests.WithLabelValues("hit").Inc()
	return true
}

func (s *service) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) {
	raw, err := json.Marshal(val)
	if err != nil {
		s.log.Warn("Cache value not encodable", "key", key, "error", err)
		return
	}
	if err := s.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		s.log.Debug("Cache set failed", "key", key, "error", err)
	}
}

func (s *service) Delete(ctx context.Context, key string) {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.log.Debug("Cache delete failed", "key", key, "error", err)
	}
}

// Generation reads the global cache version; 0 when unset or unreachable.
func (s *service) Generation(ctx context.Context) int64 {
	v, err := s.rdb.Get(ctx, generationKey).Int64()
	if err != nil {
		if err != goredis.Nil {
			s.log.Debug("Cache generation read failed", "error", err)
		}
		return 0
	}
	return v
}

// BumpGeneration lazily invalidates every generation-scoped key.
func (s *service) BumpGeneration(ctx context.Context) {
	if err := s.rdb.Incr(ctx, generationKey).Err(); err != nil {
		s.log.Warn("Cache generation bump failed", "error", err)
	}
}

func (s *service) PingState(ctx context.Context) (bool, bool) {
	v, err := s.rdb.Get(ctx, pingKey).Result()
	if err != nil {
		return false, false
	}
	return v == "1", true
}

func (s *service) Healthy(ctx context.Context) bool {
	return s.rdb.Ping(ctx).Err() == nil
}

func (s *service) SetPingState(ctx context.Context, ok bool, ttl time.Duration) {
	v := "0"
	if ok {
		v = "1"
	}
	if err := s.rdb.Set(ctx, pingKey, v, ttl).Err(); err != nil {
		s.log.Debug("Ping state cache set failed", "error", err)
	}
}
