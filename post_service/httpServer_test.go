package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
	"github.com/MinhaulMahmud/PersonalBlog/post_service/changefeed"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newHTTPTestService(t *testing.T) (*postService, *changefeed.LocalFeed, *httptest.Server) {
	t.Helper()
	logger := zaptest.NewLogger(t)
	feed := changefeed.NewLocalFeed(logger)
	ps := NewPostService(serviceDeps{feed: feed, cache: noCache{}}, defaultConfig(), logger)
	srv := httptest.NewServer(ps.routes())
	t.Cleanup(func() {
		ps.cancel()
		srv.Close()
	})
	return ps, feed, srv
}

func TestHealthEndpoint(t *testing.T) {
	ps, _, srv := newHTTPTestService(t)

	res, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", body["status"])

	ps.serviceOFF.Store(true)
	res, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestLiveEndpointStreamsCounts(t *testing.T) {
	_, feed, srv := newHTTPTestService(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/posts/p1/live"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return feed.Subscribers("p1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, feed.Publish(t.Context(), bindings.PostCounts{PostId: "p2", ViewCount: 9}))
	require.NoError(t, feed.Publish(t.Context(), bindings.PostCounts{PostId: "p1", ViewCount: 4, ReadCount: 2}))

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got bindings.PostCounts
	require.NoError(t, ws.ReadJSON(&got))
	assert.Equal(t, bindings.PostCounts{PostId: "p1", ViewCount: 4, ReadCount: 2}, got)

	ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	require.Eventually(t, func() bool { return feed.Subscribers("p1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestLiveEndpointClosesOnShutdown(t *testing.T) {
	ps, feed, srv := newHTTPTestService(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/posts/p1/live"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return feed.Subscribers("p1") == 1 }, time.Second, 5*time.Millisecond)

	ps.cancel()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
