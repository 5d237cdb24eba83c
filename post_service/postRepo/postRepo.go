package postRepo

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/oklog/ulid/v2"
)

var ErrNotFound = errors.New("post not found")

type PersistenceDB interface {
	CreatePost(ctx context.Context, post models.Post) (string, error)
	UpdatePost(ctx context.Context, post models.Post) error
	DeletePost(ctx context.Context, id string) error
	GetPost(ctx context.Context, id string) (models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	// increments are a single UPDATE ... RETURNING, never read-modify-write
	IncrementViewCount(ctx context.Context, id string) (models.CachedCounter, error)
	IncrementReadCount(ctx context.Context, id string) (models.CachedCounter, error)
	GetCounters(ctx context.Context, ids []string) ([]models.CachedCounter, error)
	GetDashboardStats(ctx context.Context) (models.DashboardStats, error)
	Close()
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// newPostID returns ids that sort in creation order, even within one millisecond.
func newPostID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
