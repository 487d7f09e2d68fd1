package sessions

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/ytradio/internal/models"
	"github.com/desertthunder/ytradio/internal/shared"
)

// Session is a single discovery run and the channel its events are delivered on.
type Session struct {
	ID        string
	CreatedAt time.Time

	events    chan models.ChannelEvent
	startOnce sync.Once
	started   atomic.Bool
	finished  atomic.Bool
	attached  atomic.Bool
}

func newSession(id string, capacity int, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		events:    make(chan models.ChannelEvent, capacity),
	}
}

// Push delivers an event. The channel capacity covers every event of one run, so Push does not block.
func (s *Session) Push(e models.ChannelEvent) {
	if e.Terminal() {
		s.finished.Store(true)
	}
	s.events <- e
}

// Events returns the receive side of the delivery channel.
func (s *Session) Events() <-chan models.ChannelEvent {
	return s.events
}

// Start runs fn in a new goroutine the first time it is called and reports whether it did.
func (s *Session) Start(fn func()) bool {
	ran := false
	s.startOnce.Do(func() {
		ran = true
		s.started.Store(true)
		go fn()
	})
	return ran
}

// Started reports whether a producer was started.
func (s *Session) Started() bool { return s.started.Load() }

// Finished reports whether the terminal event was pushed.
func (s *Session) Finished() bool { return s.finished.Load() }

// Attached reports whether a consumer currently holds the session.
func (s *Session) Attached() bool { return s.attached.Load() }

// Attach claims the session for a single consumer. The returned release must be called when the consumer stops.
func (s *Session) Attach() (release func(), err error) {
	if !s.attached.CompareAndSwap(false, true) {
		return nil, shared.ErrSessionBusy
	}
	var once sync.Once
	return func() { once.Do(func() { s.attached.Store(false) }) }, nil
}
