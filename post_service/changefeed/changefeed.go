// Package changefeed pushes per-post counter changes over redis pub/sub.
// Every instance publishes to posts.<id>.changes and any instance can serve
// subscribers for that post.
package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const bufferSize = 16

type Subscription interface {
	// Changes is closed after Close or when the underlying connection ends.
	Changes() <-chan bindings.PostCounts
	Close() error
}

type Feed interface {
	Publish(ctx context.Context, counts bindings.PostCounts) error
	Subscribe(ctx context.Context, postID string) (Subscription, error)
}

func ChannelName(postID string) string {
	return fmt.Sprintf("posts.%s.changes", postID)
}

type RedisFeed struct {
	client redis.UniversalClient
	logger *zap.Logger
}

func NewRedisFeed(client redis.UniversalClient, logger *zap.Logger) *RedisFeed {
	return &RedisFeed{client: client, logger: logger}
}

func (f *RedisFeed) Publish(ctx context.Context, counts bindings.PostCounts) error {
	payload, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, ChannelName(counts.PostId), payload).Err()
}

func (f *RedisFeed) Subscribe(ctx context.Context, postID string) (Subscription, error) {
	pubsub := f.client.Subscribe(ctx, ChannelName(postID))
	// wait for the subscription confirmation so no publish is missed after we return
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	sub := &redisSubscription{
		pubsub: pubsub,
		ch:     make(chan bindings.PostCounts, bufferSize),
		done:   make(chan struct{}),
		logger: f.logger.With(zap.String("post_id", postID)),
	}
	go sub.run(pubsub.Channel())
	return sub, nil
}

type redisSubscription struct {
	pubsub    *redis.PubSub
	ch        chan bindings.PostCounts
	done      chan struct{}
	closeOnce sync.Once
	logger    *zap.Logger
}

func (s *redisSubscription) Changes() <-chan bindings.PostCounts {
	return s.ch
}

func (s *redisSubscription) run(msgs <-chan *redis.Message) {
	defer close(s.ch)
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			counts, err := Decode([]byte(msg.Payload))
			if err != nil {
				s.logger.Warn("dropping malformed change message", zap.Error(err))
				continue
			}
			select {
			case s.ch <- counts:
			case <-s.done:
				return
			}
		}
	}
}

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

func Decode(payload []byte) (bindings.PostCounts, error) {
	var counts bindings.PostCounts
	if err := json.Unmarshal(payload, &counts); err != nil {
		return bindings.PostCounts{}, err
	}
	if counts.PostId == "" {
		return bindings.PostCounts{}, fmt.Errorf("change message without post_id")
	}
	return counts, nil
}
