package events

import (
	"context"
	"sync"
)

// Session tracks aggregates through a unit of work and dispatches their
// staged events only after the surrounding transaction commits. A session is
// single-use: Dispatch or Discard ends it.
type Session struct {
	bus *Bus

	mtx     sync.Mutex
	tracked []Recorder
	done    bool
}

// NewSession opens a commit session on the bus.
func NewSession(bus *Bus) *Session {
	return &Session{bus: bus}
}

// Track registers an aggregate whose staged events belong to this session.
// Tracking the same aggregate twice is a no-op.
func (s *Session) Track(rec Recorder) {
	if rec == nil {
		return
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.done {
		return
	}
	for _, existing := range s.tracked {
		if existing == rec {
			return
		}
	}
	s.tracked = append(s.tracked, rec)
}

// Dispatch collects staged events from tracked aggregates in staging order,
// clears them, and publishes each to the bus. Call only after the
// transaction has committed. Handler errors surface to the caller; the
// events are cleared regardless, so a retry never re-delivers them.
func (s *Session) Dispatch(ctx context.Context) error {
	s.mtx.Lock()
	if s.done {
		s.mtx.Unlock()
		return nil
	}
	s.done = true
	var pending []Event
	for _, rec := range s.tracked {
		pending = append(pending, rec.PendingEvents()...)
		rec.ClearEvents()
	}
	s.tracked = nil
	s.mtx.Unlock()

	for _, event := range pending {
		if err := s.bus.Publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Discard drops all staged events without dispatching. Call on rollback.
func (s *Session) Discard() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.done {
		return
	}
	s.done = true
	for _, rec := range s.tracked {
		rec.ClearEvents()
	}
	s.tracked = nil
}
