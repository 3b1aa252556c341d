package cache

import (
	"context"
	"time"

	"github.com/Emananii/MyDuka-sub000/internal/domain"
)

// SummaryCache holds recently computed store summaries. Invalidation is
// TTL-only; callers tolerate a slightly stale read.
type SummaryCache interface {
	Get(ctx context.Context, key string) (*domain.StoreSummary, bool, error)
	Set(ctx context.Context, key string, value *domain.StoreSummary, ttl time.Duration) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) Get(_ context.Context, _ string) (*domain.StoreSummary, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(_ context.Context, _ string, _ *domain.StoreSummary, _ time.Duration) error {
	return nil
}
