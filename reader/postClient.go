package main

import (
	"context"
	"errors"
	"io"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/MinhaulMahmud/PersonalBlog/reader/tracker"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var errPostNotFound = errors.New("post not found")

// postClient adapts the PostStore gRPC client to tracker.Store.
type postClient struct {
	client bindings.PostStoreClient
	logger *zap.Logger
}

func newPostClient(client bindings.PostStoreClient, logger *zap.Logger) *postClient {
	return &postClient{client: client, logger: logger}
}

func (c *postClient) FetchPost(ctx context.Context, postID string) (bindings.Post, error) {
	res, err := c.client.GetPost(ctx, wrapperspb.String(postID))
	if status.Code(err) == codes.NotFound {
		return bindings.Post{}, errPostNotFound
	}
	if err != nil {
		return bindings.Post{}, err
	}
	return bindings.PostFromStruct(res)
}

func (c *postClient) IncrementViewCount(ctx context.Context, postID string) error {
	_, err := c.client.IncrementViewCount(ctx, wrapperspb.String(postID))
	return err
}

func (c *postClient) IncrementReadCount(ctx context.Context, postID string) error {
	_, err := c.client.IncrementReadCount(ctx, wrapperspb.String(postID))
	return err
}

// SubscribeToPostChanges returns once the server has attached the feed, so
// changes caused by this reader's own increments are not missed.
func (c *postClient) SubscribeToPostChanges(ctx context.Context, postID string) (tracker.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := c.client.SubscribePostChanges(ctx, wrapperspb.String(postID))
	if err != nil {
		cancel()
		return nil, err
	}
	if _, err := stream.Header(); err != nil {
		cancel()
		return nil, err
	}
	sub := &streamSubscription{
		postID:  postID,
		cancel:  cancel,
		changes: make(chan bindings.PostCounts, 16),
		done:    make(chan struct{}),
		logger:  c.logger,
	}
	go sub.run(ctx, stream)
	return sub, nil
}

type streamSubscription struct {
	postID  string
	cancel  context.CancelFunc
	changes chan bindings.PostCounts
	done    chan struct{}
	logger  *zap.Logger
}

func (s *streamSubscription) run(ctx context.Context, stream grpc.ServerStreamingClient[structpb.Struct]) {
	defer close(s.done)
	defer close(s.changes)
	for {
		msg, err := stream.Recv()
		if err != nil {
			if !errors.Is(err, io.EOF) && status.Code(err) != codes.Canceled {
				s.logger.Warn("live updates stopped", zap.String("post_id", s.postID), zap.Error(err))
			}
			return
		}
		select {
		case s.changes <- bindings.CountsFromStruct(msg):
		case <-ctx.Done():
			return
		}
	}
}

func (s *streamSubscription) Changes() <-chan bindings.PostCounts {
	return s.changes
}

func (s *streamSubscription) Unsubscribe() error {
	s.cancel()
	<-s.done
	return nil
}
