package cache

import (
	"context"
	"time"
)

// NewNoop returns a cache that never hits. Used when the cache store is
// unreachable at boot (the catalog must keep working without it) and in tests.
func NewNoop() Service { return noopService{} }

type noopService struct{}

func (noopService) GetJSON(ctx context.Context, key string, dest interface{}) bool { return false }
func (noopService) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) {
}
func (noopService) Delete(ctx context.Context, key string)                       {}
func (noopService) Generation(ctx context.Context) int64                         { return 0 }
func (noopService) BumpGeneration(ctx context.Context)                           {}
func (noopService) PingState(ctx context.Context) (bool, bool)                   { return false, false }
func (noopService) SetPingState(ctx context.Context, ok bool, ttl time.Duration) {}
func (noopService) Healthy(ctx context.Context) bool                             { return false }
