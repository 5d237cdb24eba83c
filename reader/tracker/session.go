package tracker

import (
	"math"

	"github.com/MinhaulMahmud/PersonalBlog/bindings"
)

// Counter is the per-session state of one engagement counter.
type Counter int

const (
	NotRecorded Counter = iota
	Recorded
)

func (c Counter) String() string {
	if c == Recorded {
		return "recorded"
	}
	return "not_recorded"
}

// Session is the engagement state of one observed post.
// It is only ever replaced through Reduce.
type Session struct {
	PostID    string
	Post      *bindings.Post
	ViewCount int64
	ReadCount int64
	Loading   bool
	Err       error
	View      Counter
	Read      Counter
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Opened starts observation of a post. Both counters go back to NotRecorded.
type Opened struct{ PostID string }

// Fetched delivers the post row once the initial fetch succeeds.
type Fetched struct{ Post bindings.Post }

// FetchFailed records that the initial fetch failed.
type FetchFailed struct {
	PostID string
	Err    error
}

// PostLoaded is raised once the post is displayed.
type PostLoaded struct{ PostID string }

// Scrolled is raised on every scroll of the post body.
type Scrolled struct {
	Position       float64
	ViewportHeight float64
	DocumentHeight float64
}

// RemoteUpdate carries counts pushed by the live feed.
type RemoteUpdate struct {
	PostID    string
	ViewCount int64
	ReadCount int64
}

// Closed ends observation.
type Closed struct{}

func (Opened) isEvent()       {}
func (Fetched) isEvent()      {}
func (FetchFailed) isEvent()  {}
func (PostLoaded) isEvent()   {}
func (Scrolled) isEvent()     {}
func (RemoteUpdate) isEvent() {}
func (Closed) isEvent()       {}

type EffectKind int

const (
	IncrementView EffectKind = iota + 1
	IncrementRead
)

func (k EffectKind) String() string {
	switch k {
	case IncrementView:
		return "view"
	case IncrementRead:
		return "read"
	default:
		return "unknown"
	}
}

// Effect is an outbound request Reduce asks the caller to dispatch.
type Effect struct {
	Kind   EffectKind
	PostID string
}

// ScrolledToBottom reports whether the viewport bottom reached the document bottom.
func ScrolledToBottom(position, viewportHeight, documentHeight float64) bool {
	return math.Ceil(viewportHeight+position) >= documentHeight
}

// Reduce returns the session that follows ev, plus the requests to send.
// A counter moves to Recorded in the same step that emits its request, so
// replaying the trigger can never emit a second one.
func Reduce(s Session, ev Event) (Session, []Effect) {
	switch ev := ev.(type) {
	case Opened:
		return Session{PostID: ev.PostID, Loading: true}, nil

	case Fetched:
		if ev.Post.Id != s.PostID {
			return s, nil
		}
		post := ev.Post
		s.Post = &post
		s.ViewCount = post.ViewCount
		s.ReadCount = post.ReadCount
		s.Loading = false
		s.Err = nil
		return s, nil

	case FetchFailed:
		if ev.PostID != s.PostID {
			return s, nil
		}
		s.Post = nil
		s.Loading = false
		s.Err = ev.Err
		return s, nil

	case PostLoaded:
		if ev.PostID != s.PostID || s.Post == nil || s.View == Recorded {
			return s, nil
		}
		s.View = Recorded
		return s, []Effect{{Kind: IncrementView, PostID: s.PostID}}

	case Scrolled:
		if s.Post == nil || s.Read == Recorded {
			return s, nil
		}
		if !ScrolledToBottom(ev.Position, ev.ViewportHeight, ev.DocumentHeight) {
			return s, nil
		}
		s.Read = Recorded
		return s, []Effect{{Kind: IncrementRead, PostID: s.PostID}}

	case RemoteUpdate:
		if s.PostID == "" || ev.PostID != s.PostID {
			return s, nil
		}
		s.ViewCount = ev.ViewCount
		s.ReadCount = ev.ReadCount
		return s, nil

	case Closed:
		return Session{}, nil
	}
	return s, nil
}
