package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
)

func loadedSession(t *testing.T, postID string, views, reads int64) Session {
	t.Helper()
	s, effects := Reduce(Session{}, Opened{PostID: postID})
	require.Empty(t, effects)
	s, effects = Reduce(s, Fetched{Post: bindings.Post{Id: postID, Title: "Hello", ViewCount: views, ReadCount: reads}})
	require.Empty(t, effects)
	return s
}

func TestReduceOpenedResetsSession(t *testing.T) {
	s := loadedSession(t, "p1", 10, 3)
	s.View, s.Read = Recorded, Recorded

	s, effects := Reduce(s, Opened{PostID: "p2"})

	assert.Empty(t, effects)
	assert.Equal(t, Session{PostID: "p2", Loading: true}, s)
}

func TestReduceFetched(t *testing.T) {
	s := loadedSession(t, "p1", 10, 3)

	require.NotNil(t, s.Post)
	assert.Equal(t, "Hello", s.Post.Title)
	assert.Equal(t, int64(10), s.ViewCount)
	assert.Equal(t, int64(3), s.ReadCount)
	assert.False(t, s.Loading)
	assert.NoError(t, s.Err)
}

func TestReduceFetchedForStalePostIsIgnored(t *testing.T) {
	s, _ := Reduce(Session{}, Opened{PostID: "p2"})

	next, _ := Reduce(s, Fetched{Post: bindings.Post{Id: "p1", ViewCount: 99}})

	assert.Equal(t, s, next)
}

func TestReduceFetchFailed(t *testing.T) {
	s, _ := Reduce(Session{}, Opened{PostID: "missing"})
	fetchErr := errors.New("not found")

	s, effects := Reduce(s, FetchFailed{PostID: "missing", Err: fetchErr})

	assert.Empty(t, effects)
	assert.Nil(t, s.Post)
	assert.False(t, s.Loading)
	assert.ErrorIs(t, s.Err, fetchErr)

	s, effects = Reduce(s, PostLoaded{PostID: "missing"})
	assert.Empty(t, effects)
	assert.Equal(t, NotRecorded, s.View)
}

func TestReducePostLoadedEmitsOneView(t *testing.T) {
	s := loadedSession(t, "p1", 10, 3)

	s, effects := Reduce(s, PostLoaded{PostID: "p1"})
	require.Equal(t, []Effect{{Kind: IncrementView, PostID: "p1"}}, effects)
	assert.Equal(t, Recorded, s.View)

	for i := 0; i < 5; i++ {
		s, effects = Reduce(s, PostLoaded{PostID: "p1"})
		assert.Empty(t, effects)
	}
	// display counts are owned by the feed
	assert.Equal(t, int64(10), s.ViewCount)
}

func TestReducePostLoadedBeforeFetch(t *testing.T) {
	s, _ := Reduce(Session{}, Opened{PostID: "p1"})

	s, effects := Reduce(s, PostLoaded{PostID: "p1"})

	assert.Empty(t, effects)
	assert.Equal(t, NotRecorded, s.View)
}

func TestReduceScrolledEmitsOneRead(t *testing.T) {
	s := loadedSession(t, "p1", 10, 3)

	var all []Effect
	for _, pos := range []float64{0, 200, 600, 700} {
		var effects []Effect
		s, effects = Reduce(s, Scrolled{Position: pos, ViewportHeight: 800, DocumentHeight: 1500})
		all = append(all, effects...)
	}

	assert.Equal(t, []Effect{{Kind: IncrementRead, PostID: "p1"}}, all)
	assert.Equal(t, Recorded, s.Read)
}

func TestReduceScrolledBeforeFetchIsIgnored(t *testing.T) {
	s, _ := Reduce(Session{}, Opened{PostID: "p1"})

	s, effects := Reduce(s, Scrolled{Position: 1000, ViewportHeight: 800, DocumentHeight: 1500})

	assert.Empty(t, effects)
	assert.Equal(t, NotRecorded, s.Read)
}

func TestReduceRemoteUpdate(t *testing.T) {
	s := loadedSession(t, "p1", 10, 3)

	s, effects := Reduce(s, RemoteUpdate{PostID: "p1", ViewCount: 11, ReadCount: 3})
	assert.Empty(t, effects)
	assert.Equal(t, int64(11), s.ViewCount)
	assert.Equal(t, int64(3), s.ReadCount)

	s, _ = Reduce(s, RemoteUpdate{PostID: "p9", ViewCount: 500, ReadCount: 500})
	assert.Equal(t, int64(11), s.ViewCount)
	assert.Equal(t, int64(3), s.ReadCount)

	// pushed counts replace the displayed ones even when lower
	s, _ = Reduce(s, RemoteUpdate{PostID: "p1", ViewCount: 4, ReadCount: 1})
	assert.Equal(t, int64(4), s.ViewCount)
	assert.Equal(t, int64(1), s.ReadCount)
}

func TestReduceRemoteUpdateWithoutObservedPost(t *testing.T) {
	s, _ := Reduce(Session{}, RemoteUpdate{PostID: "", ViewCount: 1})
	assert.Equal(t, Session{}, s)
}

func TestReduceClosed(t *testing.T) {
	s := loadedSession(t, "p1", 10, 3)

	s, _ = Reduce(s, Closed{})

	assert.Equal(t, Session{}, s)
}

func TestScrolledToBottom(t *testing.T) {
	tests := []struct {
		name                    string
		position, viewport, doc float64
		want                    bool
	}{
		{"top of page", 0, 800, 1500, false},
		{"one pixel short", 699, 800, 1500, false},
		{"exact bottom", 700, 800, 1500, true},
		{"fractional rounds up", 699.2, 800.1, 1500, true},
		{"past bottom", 900, 800, 1500, true},
		{"short document", 0, 800, 400, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScrolledToBottom(tt.position, tt.viewport, tt.doc))
		})
	}
}
