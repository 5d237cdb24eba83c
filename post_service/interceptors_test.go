package main

import (
	"context"
	"crypto/ed25519"
	"net"
	"testing"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

func signToken(t *testing.T, priv ed25519.PrivateKey, claims jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims).SignedString(priv)
	require.NoError(t, err)
	return signed
}

func validClaims() jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   "author",
		Issuer:    "auth",
		Audience:  jwt.ClaimStrings{"post_service"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestValidateToken(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, otherPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	auth := &authenticator{publicKey: pub, issuer: "auth", audience: "post_service"}

	subject, err := auth.ValidateToken(signToken(t, priv, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "author", subject)

	tests := map[string]func(*jwt.RegisteredClaims){
		"expired":       func(c *jwt.RegisteredClaims) { c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute)) },
		"no expiry":     func(c *jwt.RegisteredClaims) { c.ExpiresAt = nil },
		"wrong issuer":  func(c *jwt.RegisteredClaims) { c.Issuer = "someone" },
		"wrong aud":     func(c *jwt.RegisteredClaims) { c.Audience = jwt.ClaimStrings{"feed"} },
		"empty subject": func(c *jwt.RegisteredClaims) { c.Subject = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			claims := validClaims()
			mutate(&claims)
			_, err := auth.ValidateToken(signToken(t, priv, claims))
			assert.Error(t, err)
		})
	}

	_, err = auth.ValidateToken(signToken(t, otherPriv, validClaims()))
	assert.Error(t, err, "foreign key")

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims()).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = auth.ValidateToken(hs)
	assert.Error(t, err, "wrong algorithm")

	disabled := &authenticator{issuer: "auth", audience: "post_service"}
	_, err = disabled.ValidateToken(signToken(t, priv, validClaims()))
	assert.Error(t, err)
}

func TestUnaryInterceptor(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	auth := &authenticator{publicKey: pub, issuer: "auth", audience: "post_service"}
	intercept := unaryInterceptor(auth, newLocalLimiter(0.001, 1), zaptest.NewLogger(t))

	var gotSubject string
	handler := func(ctx context.Context, req any) (any, error) {
		gotSubject = SubjectFromContext(ctx)
		return "ok", nil
	}
	info := func(method string) *grpc.UnaryServerInfo { return &grpc.UnaryServerInfo{FullMethod: method} }

	// public reads pass straight through
	res, err := intercept(context.Background(), nil, info(bindings.PostStore_GetPost_FullMethodName), handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", res)

	_, err = intercept(context.Background(), nil, info(bindings.PostStore_CreatePost_FullMethodName), handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "Authorization Header Required", status.Convert(err).Message())

	bad := metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer nope"))
	_, err = intercept(bad, nil, info(bindings.PostStore_CreatePost_FullMethodName), handler)
	assert.Equal(t, "Invalid/Expired Authorization Token", status.Convert(err).Message())

	good := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs("authorization", "Bearer "+signToken(t, priv, validClaims())))
	_, err = intercept(good, nil, info(bindings.PostStore_DeletePost_FullMethodName), handler)
	require.NoError(t, err)
	assert.Equal(t, "author", gotSubject)

	from := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("10.0.0.1"), Port: 1234}})
	_, err = intercept(from, nil, info(bindings.PostStore_IncrementViewCount_FullMethodName), handler)
	require.NoError(t, err)
	_, err = intercept(from, nil, info(bindings.PostStore_IncrementReadCount_FullMethodName), handler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	// another port on the same host shares the bucket
	samehost := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("10.0.0.1"), Port: 9999}})
	_, err = intercept(samehost, nil, info(bindings.PostStore_IncrementViewCount_FullMethodName), handler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	other := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("10.0.0.2"), Port: 1234}})
	_, err = intercept(other, nil, info(bindings.PostStore_IncrementViewCount_FullMethodName), handler)
	assert.NoError(t, err)
}

func TestPeerKey(t *testing.T) {
	assert.Equal(t, "unknown", peerKey(context.Background()))
	ctx := peer.NewContext(context.Background(), &peer.Peer{Addr: &net.TCPAddr{IP: net.ParseIP("::1"), Port: 80}})
	assert.Equal(t, "::1", peerKey(ctx))
}

func TestLocalLimiterBurst(t *testing.T) {
	lim := newLocalLimiter(0.001, 3)
	for i := 0; i < 3; i++ {
		ok, err := lim.Allow(context.Background(), "a")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := lim.Allow(context.Background(), "a")
	assert.False(t, ok)
	ok, _ = lim.Allow(context.Background(), "b")
	assert.True(t, ok)
}

func TestRedisLimiterTokenBucket(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	lim := &redisLimiter{client: client, perSecond: 0.001, burst: 2, logger: zaptest.NewLogger(t)}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := lim.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := lim.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = lim.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, mr.Exists("ratelimit:increment:10.0.0.1"))
	assert.Positive(t, mr.TTL("ratelimit:increment:10.0.0.1"))
}

func TestRedisLimiterRefills(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	lim := &redisLimiter{client: client, perSecond: 20, burst: 1, logger: zaptest.NewLogger(t)}
	ctx := context.Background()

	ok, _ := lim.Allow(ctx, "peer")
	require.True(t, ok)
	ok, _ = lim.Allow(ctx, "peer")
	require.False(t, ok)

	// one token every 50ms
	require.Eventually(t, func() bool {
		ok, err := lim.Allow(ctx, "peer")
		return err == nil && ok
	}, time.Second, 20*time.Millisecond)
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	lim := &redisLimiter{client: client, perSecond: 1, burst: 1, logger: zaptest.NewLogger(t)}
	ok, err := lim.Allow(context.Background(), "peer")
	assert.Error(t, err)
	assert.True(t, ok)
}
