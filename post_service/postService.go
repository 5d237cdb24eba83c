package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/assistant"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/cachedRepo"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/changefeed"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/events"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/models"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/postRepo"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/registry"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const eventTimeout = 5 * time.Second

type postService struct {
	bindings.UnimplementedPostStoreServer
	ctx           context.Context
	cancel        context.CancelFunc
	presistanceDB postRepo.PersistenceDB
	cache         cachedRepo.CachedRepo
	feed          changefeed.Feed
	events        events.Publisher
	hub           *events.Hub
	assistant     *assistant.Assistant
	auth          *authenticator
	limiter       limiter
	config        models.Config
	logger        *zap.Logger

	httpServer   *http.Server
	grpcServer   *grpc.Server
	healthServer *health.Server
	registration *registry.Registration
	serviceOFF   atomic.Bool
	background   sync.WaitGroup
}

type serviceDeps struct {
	presistance postRepo.PersistenceDB
	cache       cachedRepo.CachedRepo
	feed        changefeed.Feed
	events      events.Publisher
	hub         *events.Hub
	assistant   *assistant.Assistant
	auth        *authenticator
	limiter     limiter
}

func NewPostService(deps serviceDeps, config models.Config, logger *zap.Logger) *postService {
	ctx, cancel := context.WithCancel(context.Background())
	return &postService{
		ctx:           ctx,
		cancel:        cancel,
		presistanceDB: deps.presistance,
		cache:         deps.cache,
		feed:          deps.feed,
		events:        deps.events,
		hub:           deps.hub,
		assistant:     deps.assistant,
		auth:          deps.auth,
		limiter:       deps.limiter,
		config:        config,
		logger:        logger,
	}
}

func (ps *postService) newGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(unaryInterceptor(ps.auth, ps.limiter, ps.logger)),
		grpc.ChainStreamInterceptor(streamInterceptor(ps.auth, ps.logger)),
	)
	grpcserver := grpc.NewServer(opts...)
	bindings.RegisterPostStoreServer(grpcserver, ps)

	ps.healthServer = health.NewServer()
	ps.healthServer.SetServingStatus(bindings.PostStoreServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcserver, ps.healthServer)
	ps.grpcServer = grpcserver
	return grpcserver
}

// register lists the instance in etcd when endpoints are configured.
func (ps *postService) register() error {
	if len(ps.config.EtcdEndpoints) == 0 {
		return nil
	}
	reg, err := registry.Register(ps.ctx, ps.config.EtcdEndpoints,
		net.JoinHostPort(ps.config.HostName, ps.config.ServerPort), ps.logger)
	if err != nil {
		return err
	}
	ps.registration = reg
	return nil
}

func (ps *postService) start(listener net.Listener) error {
	ps.logger.Info("Starting gRPC server", zap.String("addr", listener.Addr().String()))
	return ps.grpcServer.Serve(listener)
}

func validID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", status.Error(codes.InvalidArgument, "post id is required")
	}
	return id, nil
}

func (ps *postService) GetPost(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id, err := validID(req.GetValue())
	if err != nil {
		return nil, err
	}
	post, err := ps.loadPost(ctx, id)
	if err != nil {
		return nil, err
	}
	res, err := bindings.PostToStruct(toWire(post))
	if err != nil {
		ps.logger.Error("Failed to encode post", zap.String("post_id", id), zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to Get Post Due to Internal Issues")
	}
	return res, nil
}

// loadPost reads through the cache. A counters-only miss is filled from the
// database without reloading the body.
func (ps *postService) loadPost(ctx context.Context, id string) (models.Post, error) {
	post, err := ps.cache.GetPost(ctx, id)
	switch {
	case err == nil:
		return post, nil
	case errors.Is(err, cachedRepo.ErrCountersMiss):
		cnts, cntErr := ps.presistanceDB.GetCounters(ctx, []string{id})
		if cntErr == nil && len(cnts) == 1 {
			post.ViewCount, post.ReadCount = cnts[0].Views, cnts[0].Reads
			if err := ps.cache.SetCounters(ctx, cnts[0]); err != nil {
				ps.logger.Warn("Failed to cache counters", zap.String("post_id", id), zap.Error(err))
			}
			return post, nil
		}
	case !errors.Is(err, cachedRepo.ErrCacheMiss):
		ps.logger.Warn("Error in Get Post from Cache", zap.String("post_id", id), zap.Error(err))
	}

	post, err = ps.presistanceDB.GetPost(ctx, id)
	if errors.Is(err, postRepo.ErrNotFound) {
		return models.Post{}, status.Error(codes.NotFound, "Post not found")
	}
	if err != nil {
		ps.logger.Error("Error in GetPost From DB", zap.String("post_id", id), zap.Error(err))
		return models.Post{}, status.Error(codes.Internal, "Failed to Get Post Due to Internal Issues")
	}
	if err := ps.cache.CachePost(ctx, post); err != nil {
		ps.logger.Warn("Failed to cache post", zap.String("post_id", id), zap.Error(err))
	}
	return post, nil
}

func (ps *postService) ListPosts(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	posts, err := ps.presistanceDB.ListPosts(ctx)
	if err != nil {
		ps.logger.Error("Error in ListPosts From DB", zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to List Posts Due to Internal Issues")
	}
	wire := make([]bindings.Post, 0, len(posts))
	for _, p := range posts {
		wire = append(wire, toWire(p))
	}
	res, err := bindings.PostsToStruct(wire)
	if err != nil {
		ps.logger.Error("Failed to encode posts", zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to List Posts Due to Internal Issues")
	}
	return res, nil
}

func (ps *postService) IncrementViewCount(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return ps.increment(ctx, req.GetValue(), ps.presistanceDB.IncrementViewCount)
}

func (ps *postService) IncrementReadCount(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	return ps.increment(ctx, req.GetValue(), ps.presistanceDB.IncrementReadCount)
}

func (ps *postService) increment(ctx context.Context, rawID string,
	incr func(context.Context, string) (models.CachedCounter, error)) (*structpb.Struct, error) {
	id, err := validID(rawID)
	if err != nil {
		return nil, err
	}
	cnt, err := incr(ctx, id)
	if errors.Is(err, postRepo.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "Post not found")
	}
	if err != nil {
		ps.logger.Error("Failed to increment counter", zap.String("post_id", id), zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to Record Engagement Due to Internal Issues")
	}

	// cache, feed and event log failures only delay other readers, so just log them
	if err := ps.cache.SetCounters(ctx, cnt); err != nil {
		ps.logger.Warn("Failed to cache counters", zap.String("post_id", id), zap.Error(err))
	}
	counts := bindings.PostCounts{PostId: cnt.Id, ViewCount: cnt.Views, ReadCount: cnt.Reads}
	if err := ps.feed.Publish(ctx, counts); err != nil {
		ps.logger.Warn("Failed to publish post change", zap.String("post_id", id), zap.Error(err))
	}
	ps.publishEvent(bindings.PostEvent{
		Type:      bindings.PostCountsChanged,
		PostId:    cnt.Id,
		ViewCount: cnt.Views,
		ReadCount: cnt.Reads,
	})

	res, err := bindings.CountsToStruct(counts)
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to Record Engagement Due to Internal Issues")
	}
	return res, nil
}

func (ps *postService) SubscribePostChanges(req *wrapperspb.StringValue, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	id, err := validID(req.GetValue())
	if err != nil {
		return err
	}
	sub, err := ps.feed.Subscribe(stream.Context(), id)
	if err != nil {
		ps.logger.Warn("Failed to subscribe to post changes", zap.String("post_id", id), zap.Error(err))
		return status.Error(codes.Unavailable, "Live updates are unavailable")
	}
	defer sub.Close()

	// headers tell the client the feed is attached
	if err := stream.SendHeader(metadata.MD{}); err != nil {
		return err
	}

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case <-ps.ctx.Done():
			return status.Error(codes.Unavailable, "service is shutting down")
		case counts, ok := <-sub.Changes():
			if !ok {
				return status.Error(codes.Unavailable, "Live updates ended")
			}
			msg, err := bindings.CountsToStruct(counts)
			if err != nil {
				ps.logger.Warn("Failed to encode post change", zap.Error(err))
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

func (ps *postService) CreatePost(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	wire, err := bindings.PostFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := validatePost(wire); err != nil {
		return nil, err
	}
	post := fromWire(wire)
	id, err := ps.presistanceDB.CreatePost(ctx, post)
	if err != nil {
		ps.logger.Error("Failed to create post", zap.Error(err))
		return nil, status.Error(codes.Internal, "Post Can`t be Created Due to internal Issues")
	}
	post.Id = id
	ps.logger.Info("Post created", zap.String("post_id", id), zap.String("by", SubjectFromContext(ctx)))
	ps.publishEvent(bindings.PostEvent{Type: bindings.PostCreated, PostId: id})
	return wrapperspb.String(id), nil
}

func (ps *postService) UpdatePost(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	wire, err := bindings.PostFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if _, err := validID(wire.Id); err != nil {
		return nil, err
	}
	if err := validatePost(wire); err != nil {
		return nil, err
	}
	err = ps.presistanceDB.UpdatePost(ctx, fromWire(wire))
	if errors.Is(err, postRepo.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "Post not found")
	}
	if err != nil {
		ps.logger.Error("Failed to update post", zap.String("post_id", wire.Id), zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to Update Post Due to Internal Issues")
	}
	if err := ps.cache.DeletePost(ctx, wire.Id); err != nil {
		// readers may see the old version until the cache entry expires
		ps.logger.Warn("Failed to invalidate cached post", zap.String("post_id", wire.Id), zap.Error(err))
	}
	ps.publishEvent(bindings.PostEvent{Type: bindings.PostUpdated, PostId: wire.Id})
	return &emptypb.Empty{}, nil
}

func (ps *postService) DeletePost(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := validID(req.GetValue())
	if err != nil {
		return nil, err
	}
	err = ps.presistanceDB.DeletePost(ctx, id)
	if errors.Is(err, postRepo.ErrNotFound) {
		return nil, status.Error(codes.NotFound, "Post not found")
	}
	if err != nil {
		ps.logger.Error("Failed to delete post", zap.String("post_id", id), zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to Delete Post Due to Internal Issues")
	}

	if err := ps.cache.DeletePost(ctx, id); err != nil {
		// in case of cache failing, users can still see the post until expiration.
		// for simplicity just log the error now
		ps.logger.Warn("Failed to Delete post from the cache", zap.String("post_id", id), zap.Error(err))
	}
	ps.publishEvent(bindings.PostEvent{Type: bindings.PostDeleted, PostId: id})
	return &emptypb.Empty{}, nil
}

func (ps *postService) GetDashboardStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stats, err := ps.presistanceDB.GetDashboardStats(ctx)
	if err != nil {
		ps.logger.Error("Failed to load dashboard stats", zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to Load Stats Due to Internal Issues")
	}
	res, err := bindings.StatsToStruct(bindings.DashboardStats{
		TotalPosts: stats.TotalPosts,
		TotalViews: stats.TotalViews,
		TotalReads: stats.TotalReads,
	})
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to Load Stats Due to Internal Issues")
	}
	return res, nil
}

func (ps *postService) SubscribeDashboard(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	evs, cancel := ps.hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-stream.Context().Done():
			return nil
		case <-ps.ctx.Done():
			return status.Error(codes.Unavailable, "service is shutting down")
		case ev, ok := <-evs:
			if !ok {
				return nil
			}
			msg, err := bindings.EventToStruct(ev)
			if err != nil {
				ps.logger.Warn("Failed to encode post event", zap.Error(err))
				continue
			}
			if err := stream.Send(msg); err != nil {
				return err
			}
		}
	}
}

func (ps *postService) Summarize(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if ps.assistant == nil {
		return nil, status.Error(codes.Unavailable, "AI assistant is not configured")
	}
	summary, err := ps.assistant.Summarize(ctx, req.GetValue())
	if errors.Is(err, assistant.ErrEmptyContent) {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}
	if err != nil {
		ps.logger.Error("Failed to generate summary", zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to generate summary")
	}
	return wrapperspb.String(summary), nil
}

func (ps *postService) SuggestSEO(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if ps.assistant == nil {
		return nil, status.Error(codes.Unavailable, "AI assistant is not configured")
	}
	suggestion, err := ps.assistant.SuggestSEO(ctx, req.GetValue())
	if errors.Is(err, assistant.ErrEmptyContent) {
		return nil, status.Error(codes.InvalidArgument, "content is required")
	}
	if err != nil {
		ps.logger.Error("Failed to generate SEO suggestions", zap.Error(err))
		return nil, status.Error(codes.Internal, "Failed to generate SEO suggestions")
	}
	res, err := bindings.SEOToStruct(suggestion)
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to generate SEO suggestions")
	}
	return res, nil
}

// publishEvent appends ev to the event log without holding up the caller.
func (ps *postService) publishEvent(ev bindings.PostEvent) {
	ev.OccurredAt = time.Now().UnixMilli()
	ps.background.Add(1)
	go func() {
		defer ps.background.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ps.ctx), eventTimeout)
		defer cancel()
		if err := ps.events.Publish(ctx, ev); err != nil {
			ps.logger.Warn("Failed to publish post event",
				zap.String("type", string(ev.Type)), zap.String("post_id", ev.PostId), zap.Error(err))
		}
	}()
}

func validatePost(p bindings.Post) error {
	switch {
	case strings.TrimSpace(p.Title) == "":
		return status.Error(codes.InvalidArgument, "title is required")
	case strings.TrimSpace(p.Content) == "":
		return status.Error(codes.InvalidArgument, "content is required")
	case p.ReadTime < 0:
		return status.Error(codes.InvalidArgument, "read_time must not be negative")
	}
	return nil
}

func toWire(p models.Post) bindings.Post {
	return bindings.Post{
		Id:             p.Id,
		Title:          p.Title,
		Content:        p.Content,
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		ReadTime:       p.ReadTime,
		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		SEOKeywords:    p.SEOKeywords,
		ViewCount:      p.ViewCount,
		ReadCount:      p.ReadCount,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// fromWire drops the counters; they are only ever changed by increments.
func fromWire(p bindings.Post) models.Post {
	return models.Post{CachedPost: models.CachedPost{
		Id:             p.Id,
		Title:          p.Title,
		Content:        p.Content,
		Category:       p.Category,
		ImageURL:       p.ImageURL,
		ReadTime:       p.ReadTime,
		SEOTitle:       p.SEOTitle,
		SEODescription: p.SEODescription,
		SEOKeywords:    p.SEOKeywords,
	}}
}
