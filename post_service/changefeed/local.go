package changefeed

import (
	"context"
	"sync"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"go.uber.org/zap"
)

// LocalFeed delivers changes within one process. Used when no redis is configured.
type LocalFeed struct {
	mu     sync.Mutex
	subs   map[string]map[*localSubscription]struct{}
	logger *zap.Logger
}

func NewLocalFeed(logger *zap.Logger) *LocalFeed {
	return &LocalFeed{
		subs:   make(map[string]map[*localSubscription]struct{}),
		logger: logger,
	}
}

func (f *LocalFeed) Publish(_ context.Context, counts bindings.PostCounts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs[counts.PostId] {
		select {
		case sub.ch <- counts:
		default:
			f.logger.Warn("slow subscriber, dropping change", zap.String("post_id", counts.PostId))
		}
	}
	return nil
}

func (f *LocalFeed) Subscribe(_ context.Context, postID string) (Subscription, error) {
	sub := &localSubscription{
		feed:   f,
		postID: postID,
		ch:     make(chan bindings.PostCounts, bufferSize),
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[postID] == nil {
		f.subs[postID] = make(map[*localSubscription]struct{})
	}
	f.subs[postID][sub] = struct{}{}
	return sub, nil
}

func (f *LocalFeed) Subscribers(postID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[postID])
}

func (f *LocalFeed) remove(sub *localSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs[sub.postID], sub)
	if len(f.subs[sub.postID]) == 0 {
		delete(f.subs, sub.postID)
	}
	close(sub.ch)
}

type localSubscription struct {
	feed      *LocalFeed
	postID    string
	ch        chan bindings.PostCounts
	closeOnce sync.Once
}

func (s *localSubscription) Changes() <-chan bindings.PostCounts {
	return s.ch
}

func (s *localSubscription) Close() error {
	s.closeOnce.Do(func() { s.feed.remove(s) })
	return nil
}
