package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestFeed(t *testing.T) (*RedisFeed, redis.UniversalClient) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisFeed(client, zaptest.NewLogger(t)), client
}

func receive(t *testing.T, sub Subscription) bindings.PostCounts {
	t.Helper()
	select {
	case c, ok := <-sub.Changes():
		require.True(t, ok, "changes closed")
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("no change delivered")
		return bindings.PostCounts{}
	}
}

func TestRedisFeedDeliversOwnPost(t *testing.T) {
	feed, _ := newTestFeed(t)
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, feed.Publish(ctx, bindings.PostCounts{PostId: "p2", ViewCount: 9}))
	require.NoError(t, feed.Publish(ctx, bindings.PostCounts{PostId: "p1", ViewCount: 3, ReadCount: 1}))

	assert.Equal(t, bindings.PostCounts{PostId: "p1", ViewCount: 3, ReadCount: 1}, receive(t, sub))
}

func TestRedisFeedSkipsMalformedMessages(t *testing.T) {
	feed, client := newTestFeed(t)
	ctx := context.Background()

	sub, err := feed.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, client.Publish(ctx, ChannelName("p1"), "garbage").Err())
	require.NoError(t, feed.Publish(ctx, bindings.PostCounts{PostId: "p1", ViewCount: 1}))
	assert.Equal(t, bindings.PostCounts{PostId: "p1", ViewCount: 1}, receive(t, sub))
}

func TestRedisFeedCloseEndsChanges(t *testing.T) {
	feed, _ := newTestFeed(t)
	sub, err := feed.Subscribe(context.Background(), "p1")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	assert.NoError(t, sub.Close(), "close is idempotent")
	select {
	case _, ok := <-sub.Changes():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("changes not closed")
	}
}

func TestRedisFeedSubscribeFails(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	feed := NewRedisFeed(client, zaptest.NewLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := feed.Subscribe(ctx, "p1")
	assert.Error(t, err)
}
