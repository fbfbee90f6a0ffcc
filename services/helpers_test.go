package services

import (
	"context"
	"sync"
	"time"

	"roombook-backend/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.UnixMilli(1_760_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type memBackend struct {
	mu      sync.Mutex
	rooms   []models.Room
	exists  bool
	loadErr error
	saveErr error
	saves   int
}

func newMemBackend(rooms ...models.Room) *memBackend {
	return &memBackend{rooms: models.CloneRooms(rooms), exists: true}
}

func (b *memBackend) Load(ctx context.Context) ([]models.Room, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	if !b.exists {
		return nil, ErrNoDocument
	}
	return models.CloneRooms(b.rooms), nil
}

func (b *memBackend) Save(ctx context.Context, rooms []models.Room) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.saveErr != nil {
		return b.saveErr
	}
	b.rooms = models.CloneRooms(rooms)
	b.exists = true
	b.saves++
	return nil
}

func (b *memBackend) room(id int) models.Room {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range b.rooms {
		if r.ID == id {
			return r.Clone()
		}
	}
	return models.Room{}
}

func (b *memBackend) saveCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}

type fakeTimer struct {
	at time.Time
	fn func()
}

// fakeScheduler records timers instead of arming them; tests fire them by hand.
type fakeScheduler struct {
	mu        sync.Mutex
	timers    map[int]fakeTimer
	schedules int
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{timers: make(map[int]fakeTimer)}
}

func (s *fakeScheduler) Schedule(roomID int, at time.Time, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers[roomID] = fakeTimer{at: at, fn: fn}
	s.schedules++
}

func (s *fakeScheduler) Cancel(roomID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timers, roomID)
}

func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *fakeScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = make(map[int]fakeTimer)
}

func (s *fakeScheduler) timer(roomID int) (fakeTimer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[roomID]
	return t, ok
}

// fire runs the pending callback for roomID the way ExpiryScheduler does.
func (s *fakeScheduler) fire(roomID int) bool {
	s.mu.Lock()
	t, ok := s.timers[roomID]
	if ok {
		delete(s.timers, roomID)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	t.fn()
	return true
}

func availableRooms(ids ...int) []models.Room {
	rooms := make([]models.Room, 0, len(ids))
	for _, id := range ids {
		rooms = append(rooms, models.Room{ID: id, Name: "Room", Status: models.RoomAvailable})
	}
	return rooms
}

func occupiedRoom(id int, end time.Time, code string) models.Room {
	r := models.Room{ID: id, Name: "Room"}
	r.Occupy("Ann", "Study group", code, end)
	return r
}
