// Package tracker records at most one view and one read per opened post
// and keeps the displayed counters in sync with the live change feed.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
)

var (
	ErrFetchFailed        = errors.New("fetch post failed")
	ErrIncrementFailed    = errors.New("increment counter failed")
	ErrSubscriptionFailed = errors.New("subscribe to post changes failed")
)

const DefaultRequestTimeout = 5 * time.Second

// Store is the remote side the tracker talks to.
type Store interface {
	FetchPost(ctx context.Context, postID string) (bindings.Post, error)
	IncrementViewCount(ctx context.Context, postID string) error
	IncrementReadCount(ctx context.Context, postID string) error
	SubscribeToPostChanges(ctx context.Context, postID string) (Subscription, error)
}

// Subscription delivers counts for one post. Unsubscribe must close the
// Changes channel once delivery stops.
type Subscription interface {
	Changes() <-chan bindings.PostCounts
	Unsubscribe() error
}

// Snapshot is what the presentation renders.
type Snapshot struct {
	Post      *bindings.Post
	ViewCount int64
	ReadCount int64
	Loading   bool
	Err       error
}

type Option func(*Tracker)

func WithRequestTimeout(d time.Duration) Option {
	return func(t *Tracker) { t.requestTimeout = d }
}

// WithOnChange registers fn to be called after every state change.
// fn runs outside the tracker lock.
func WithOnChange(fn func(Snapshot)) Option {
	return func(t *Tracker) { t.onChange = fn }
}

type Tracker struct {
	store          Store
	logger         *zap.Logger
	requestTimeout time.Duration
	onChange       func(Snapshot)

	mu       sync.Mutex
	session  Session
	sub      Subscription
	feedDone chan struct{}
	// gen changes on every Open and Close; a subscription started under an
	// older gen is released instead of attached.
	gen uint64

	inflight sync.WaitGroup
}

func New(store Store, logger *zap.Logger, opts ...Option) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		store:          store,
		logger:         logger,
		requestTimeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open starts observing postID. Any previous subscription is released
// before the new post is fetched. On success the live feed is attached and
// the view is recorded.
func (t *Tracker) Open(ctx context.Context, postID string) error {
	t.stopFeed()
	gen := t.nextGen()
	t.apply(Opened{PostID: postID})

	post, err := t.store.FetchPost(ctx, postID)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrFetchFailed, err)
		t.apply(FetchFailed{PostID: postID, Err: err})
		return err
	}
	t.apply(Fetched{Post: post})

	t.subscribe(ctx, postID, gen)
	t.OnPostLoaded(postID)
	return nil
}

func (t *Tracker) OnPostLoaded(postID string) {
	t.apply(PostLoaded{PostID: postID})
}

func (t *Tracker) OnScrollProgress(position, viewportHeight, documentHeight float64) {
	t.apply(Scrolled{
		Position:       position,
		ViewportHeight: viewportHeight,
		DocumentHeight: documentHeight,
	})
}

func (t *Tracker) OnRemoteUpdate(postID string, viewCount, readCount int64) {
	t.apply(RemoteUpdate{PostID: postID, ViewCount: viewCount, ReadCount: readCount})
}

func (t *Tracker) State() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return snapshotOf(t.session)
}

// Close releases the subscription and waits for in-flight increments.
func (t *Tracker) Close() {
	t.nextGen()
	t.stopFeed()
	t.inflight.Wait()
	t.apply(Closed{})
}

func (t *Tracker) apply(ev Event) {
	t.mu.Lock()
	next, effects := Reduce(t.session, ev)
	t.session = next
	snap := snapshotOf(next)
	t.mu.Unlock()

	for _, e := range effects {
		t.dispatch(e)
	}
	if t.onChange != nil {
		t.onChange(snap)
	}
}

// dispatch sends e without blocking the caller. The request is detached
// from any caller context and bounded by the request timeout.
func (t *Tracker) dispatch(e Effect) {
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), t.requestTimeout)
		defer cancel()

		var err error
		switch e.Kind {
		case IncrementView:
			err = t.store.IncrementViewCount(ctx, e.PostID)
		case IncrementRead:
			err = t.store.IncrementReadCount(ctx, e.PostID)
		}
		if err != nil {
			t.logger.Warn("failed to record engagement",
				zap.String("post_id", e.PostID),
				zap.Stringer("counter", e.Kind),
				zap.Error(fmt.Errorf("%w: %w", ErrIncrementFailed, err)))
		}
	}()
}

func (t *Tracker) nextGen() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	return t.gen
}

func (t *Tracker) subscribe(ctx context.Context, postID string, gen uint64) {
	sub, err := t.store.SubscribeToPostChanges(context.WithoutCancel(ctx), postID)
	if err != nil {
		t.logger.Warn("live updates unavailable, counts may be stale",
			zap.String("post_id", postID),
			zap.Error(fmt.Errorf("%w: %w", ErrSubscriptionFailed, err)))
		return
	}

	done := make(chan struct{})
	t.mu.Lock()
	if t.gen != gen {
		t.mu.Unlock()
		t.release(postID, sub)
		return
	}
	t.sub, t.feedDone = sub, done
	t.mu.Unlock()

	go t.consume(sub, done)
}

func (t *Tracker) consume(sub Subscription, done chan struct{}) {
	defer close(done)
	for c := range sub.Changes() {
		t.OnRemoteUpdate(c.PostId, c.ViewCount, c.ReadCount)
	}
}

func (t *Tracker) stopFeed() {
	t.mu.Lock()
	sub, done, postID := t.sub, t.feedDone, t.session.PostID
	t.sub, t.feedDone = nil, nil
	t.mu.Unlock()

	if sub == nil {
		return
	}
	t.release(postID, sub)
	<-done
}

func (t *Tracker) release(postID string, sub Subscription) {
	if err := sub.Unsubscribe(); err != nil {
		t.logger.Debug("unsubscribe failed", zap.String("post_id", postID), zap.Error(err))
	}
}

func snapshotOf(s Session) Snapshot {
	snap := Snapshot{
		ViewCount: s.ViewCount,
		ReadCount: s.ReadCount,
		Loading:   s.Loading,
		Err:       s.Err,
	}
	if s.Post != nil {
		p := *s.Post
		snap.Post = &p
	}
	return snap
}
