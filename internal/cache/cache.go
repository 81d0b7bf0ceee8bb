// Package cache tracks when each user's pattern set was last computed,
// backing the 24h staleness policy.
package cache

import (
	"context"
	"time"
)

// PatternCache records pattern computation timestamps per user. The
// staleness decision itself lives in the feedback package; the cache
// only stores and returns timestamps.
type PatternCache interface {
	LastCalculated(ctx context.Context, userID string) (time.Time, bool)
	SetLastCalculated(ctx context.Context, userID string, at time.Time) error
}
