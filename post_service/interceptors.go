package main

import (
	"context"
	"crypto/ed25519"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

var adminMethods = map[string]bool{
	bindings.PostStore_CreatePost_FullMethodName:         true,
	bindings.PostStore_UpdatePost_FullMethodName:         true,
	bindings.PostStore_DeletePost_FullMethodName:         true,
	bindings.PostStore_GetDashboardStats_FullMethodName:  true,
	bindings.PostStore_SubscribeDashboard_FullMethodName: true,
	bindings.PostStore_SuggestSEO_FullMethodName:         true,
}

var rateLimitedMethods = map[string]bool{
	bindings.PostStore_IncrementViewCount_FullMethodName: true,
	bindings.PostStore_IncrementReadCount_FullMethodName: true,
}

type subjectKey struct{}

func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey{}).(string)
	return s
}

// authenticator verifies admin tokens issued by the auth provider.
type authenticator struct {
	publicKey ed25519.PublicKey
	issuer    string
	audience  string
}

func (a *authenticator) ValidateToken(token string) (string, error) {
	if a == nil || len(a.publicKey) == 0 {
		return "", errors.New("admin API is disabled")
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithExpirationRequired(),
	)
	claims := jwt.RegisteredClaims{}
	parse, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return a.publicKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errors.New("token expired")
		}
		return "", err
	}
	if !parse.Valid || claims.Subject == "" {
		return "", errors.New("token is not valid")
	}
	return claims.Subject, nil
}

func (a *authenticator) authorize(ctx context.Context) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get("authorization")
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "Authorization Header Required")
	}
	token := strings.TrimSpace(strings.TrimPrefix(values[0], "Bearer "))
	subject, err := a.ValidateToken(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "Invalid/Expired Authorization Token")
	}
	return context.WithValue(ctx, subjectKey{}, subject), nil
}

type limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// localLimiter keeps one token bucket per peer in memory.
type localLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLocalLimiter(perSecond float64, burst int) *localLimiter {
	return &localLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *localLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow(), nil
}

// token bucket shared by all instances; state lives in a hash per peer.
// ARGV: rate per second, burst, now in ms, key ttl in ms.
var tokenBucketScript = redis.NewScript(`
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local state = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(state[1])
local ts = tonumber(state[2])
if tokens == nil or ts == nil then
  tokens = burst
  ts = now
end
tokens = math.min(burst, tokens + math.max(0, now - ts) / 1000 * rate)
local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end
redis.call('HSET', KEYS[1], 'tokens', tostring(tokens), 'ts', ARGV[3])
redis.call('PEXPIRE', KEYS[1], ARGV[4])
return allowed
`)

type redisLimiter struct {
	client    redis.UniversalClient
	perSecond float64
	burst     int
	logger    *zap.Logger
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	// keep the key until an empty bucket would be full again
	ttl := int64(float64(l.burst)/l.perSecond*1000) + 1000
	res, err := tokenBucketScript.Run(ctx, l.client, []string{"ratelimit:increment:" + key},
		l.perSecond, l.burst, time.Now().UnixMilli(), ttl).Int64()
	// fail open, a redis outage should not stop readers from being counted
	if err != nil {
		l.logger.Warn("rate limiter unavailable", zap.Error(err))
		return true, err
	}
	return res == 1, nil
}

func peerKey(ctx context.Context) string {
	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return p.Addr.String()
	}
	return host
}

func unaryInterceptor(auth *authenticator, lim limiter, logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if adminMethods[info.FullMethod] {
			authed, err := auth.authorize(ctx)
			if err != nil {
				logger.Info("rejected admin call", zap.String("method", info.FullMethod))
				return nil, err
			}
			ctx = authed
		}
		if rateLimitedMethods[info.FullMethod] && lim != nil {
			if ok, _ := lim.Allow(ctx, peerKey(ctx)); !ok {
				return nil, status.Error(codes.ResourceExhausted, "Too Many Requests")
			}
		}
		return handler(ctx, req)
	}
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }

func streamInterceptor(auth *authenticator, logger *zap.Logger) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if !adminMethods[info.FullMethod] {
			return handler(srv, ss)
		}
		ctx, err := auth.authorize(ss.Context())
		if err != nil {
			logger.Info("rejected admin stream", zap.String("method", info.FullMethod))
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}
