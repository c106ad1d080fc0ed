package core

import (
	"context"
	"sync"
)

// Stream is the single room-wide event feed: a fixed ring indexed by a
// global sequence. Subscribers hold independent cursors; one that falls
// behind the retention window skips forward to the oldest retained event
// instead of blocking the publisher or losing order.
type Stream struct {
	mu     sync.Mutex
	cond   *sync.Cond
	buf    []Event
	seq    uint64 // next sequence to be written
	closed bool
}

func NewStream(capacity int) *Stream {
	if capacity < 1 {
		capacity = 1
	}
	s := &Stream{buf: make([]Event, capacity)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Publish appends an event and wakes all waiting subscribers. Never blocks.
func (s *Stream) Publish(ev Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.buf[s.seq%uint64(len(s.buf))] = ev
	s.seq++
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Close wakes all subscribers; pending events remain readable, after which
// Next reports exhaustion.
func (s *Stream) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cond.Broadcast()
}

// Subscription is one subscriber's cursor into the stream.
type Subscription struct {
	stream *Stream
	cursor uint64
	lagged uint64
}

// Subscribe registers a cursor starting at the current head. The returned
// subscription is owned by a single goroutine; ctx cancellation unblocks a
// pending Next.
func (s *Stream) Subscribe(ctx context.Context) *Subscription {
	s.mu.Lock()
	sub := &Subscription{stream: s, cursor: s.seq}
	s.mu.Unlock()
	context.AfterFunc(ctx, s.cond.Broadcast)
	return sub
}

// Next blocks until an event is available, the stream closes, or ctx is
// done. Events are returned in publication order; entries that fell out of
// the retention window are skipped and counted.
func (sub *Subscription) Next(ctx context.Context) (Event, bool) {
	s := sub.stream
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		if ctx.Err() != nil {
			return Event{}, false
		}
		if window := uint64(len(s.buf)); s.seq > window && sub.cursor < s.seq-window {
			oldest := s.seq - window
			sub.lagged += oldest - sub.cursor
			sub.cursor = oldest
		}
		if sub.cursor < s.seq {
			ev := s.buf[sub.cursor%uint64(len(s.buf))]
			sub.cursor++
			return ev, true
		}
		if s.closed {
			return Event{}, false
		}
		s.cond.Wait()
	}
}

// Lagged returns the cumulative number of events this subscriber skipped.
func (sub *Subscription) Lagged() uint64 {
	s := sub.stream
	s.mu.Lock()
	defer s.mu.Unlock()
	return sub.lagged
}
