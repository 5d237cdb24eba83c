package cachedRepo

import (
	"context"
	"errors"

	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
)

var (
	ErrCacheMiss = errors.New("post not cached")
	// ErrCountersMiss comes back with the cached post body when only the counters expired.
	ErrCountersMiss = errors.New("post counters not cached")
)

// CachedRepo caches post bodies and their counters. Counters are
// non-decreasing: CachePost and SetCounters never lower a cached value.
type CachedRepo interface {
	CachePost(ctx context.Context, post models.Post) error
	GetPost(ctx context.Context, id string) (models.Post, error)
	DeletePost(ctx context.Context, id string) error
	SetCounters(ctx context.Context, cnt models.CachedCounter) error
	Close()
}
