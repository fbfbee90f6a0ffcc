package services

import (
	"sync"
	"time"
)

// Scheduler keeps at most one pending expiry callback per room.
type Scheduler interface {
	Schedule(roomID int, at time.Time, fn func())
	Cancel(roomID int)
	Pending() int
	Stop()
}

type scheduledTimer struct {
	timer *time.Timer
	seq   uint64
}

// ExpiryScheduler is a Scheduler backed by one time.AfterFunc per room.
type ExpiryScheduler struct {
	mu      sync.Mutex
	seq     uint64
	timers  map[int]*scheduledTimer
	stopped bool
}

func NewExpiryScheduler() *ExpiryScheduler {
	return &ExpiryScheduler{timers: make(map[int]*scheduledTimer)}
}

// Schedule replaces any pending timer for roomID with one firing at at.
// A time in the past fires immediately.
func (s *ExpiryScheduler) Schedule(roomID int, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if prev, ok := s.timers[roomID]; ok {
		prev.timer.Stop()
	}

	s.seq++
	seq := s.seq
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	entry := &scheduledTimer{seq: seq}
	entry.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		cur, ok := s.timers[roomID]
		if !ok || cur.seq != seq {
			// superseded or cancelled after the runtime already started this func
			s.mu.Unlock()
			return
		}
		delete(s.timers, roomID)
		s.mu.Unlock()
		fn()
	})
	s.timers[roomID] = entry
}

func (s *ExpiryScheduler) Cancel(roomID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.timers[roomID]; ok {
		cur.timer.Stop()
		delete(s.timers, roomID)
	}
}

func (s *ExpiryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending timer and refuses new ones.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, cur := range s.timers {
		cur.timer.Stop()
		delete(s.timers, id)
	}
	s.stopped = true
}
