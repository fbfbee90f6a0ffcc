package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roombook-backend/models"

	"go.uber.org/zap"
)

// ErrNoDocument is returned by a RoomBackend whose document was never written.
var ErrNoDocument = errors.New("room document does not exist")

// ErrDocumentUnreadable is returned by Seed when a document exists but cannot be loaded.
var ErrDocumentUnreadable = errors.New("room document unreadable")

// errUnchanged lets a WithRoom callback finish without rewriting the document.
var errUnchanged = errors.New("room unchanged")

// RoomBackend persists the whole room collection as one document.
type RoomBackend interface {
	Load(ctx context.Context) ([]models.Room, error)
	Save(ctx context.Context, rooms []models.Room) error
}

// RoomStore serialises every read-modify-write of the room document behind one
// mutex and applies lazy expiry on each read.
type RoomStore struct {
	mu       sync.Mutex
	backend  RoomBackend
	now      func() time.Time
	log      *zap.Logger
	onChange func(models.Room)
}

func NewRoomStore(backend RoomBackend, now func() time.Time, log *zap.Logger) *RoomStore {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RoomStore{backend: backend, now: now, log: log}
}

// OnChange registers fn to be called, with the store lock held, for every room
// whose persisted state changed. fn must not call back into the store.
func (s *RoomStore) OnChange(fn func(models.Room)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// ReadAll returns every room after lazy expiry. An unreadable document yields
// an empty slice rather than an error.
func (s *RoomStore) ReadAll(ctx context.Context) []models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneRooms(s.loadLocked(ctx))
}

// WriteAll replaces the whole room collection.
func (s *RoomStore) WriteAll(ctx context.Context, rooms []models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, _ := s.backend.Load(ctx)
	next := models.CloneRooms(rooms)
	if err := s.backend.Save(ctx, next); err != nil {
		return fmt.Errorf("persist rooms: %w", err)
	}

	byID := make(map[int]models.Room, len(prev))
	for _, r := range prev {
		byID[r.ID] = r
	}
	for _, r := range next {
		if old, ok := byID[r.ID]; !ok || !sameRoom(old, r) {
			s.notifyLocked(r)
		}
	}
	return nil
}

// WithRoom runs fn against a copy of room id and persists the collection if fn
// succeeds. The whole cycle holds the store lock.
func (s *RoomStore) WithRoom(ctx context.Context, id int, fn func(room *models.Room) error) (models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rooms := s.loadLocked(ctx)
	idx := -1
	for i := range rooms {
		if rooms[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.Room{}, notFoundError()
	}

	before := rooms[idx].Clone()
	working := rooms[idx].Clone()
	if err := fn(&working); err != nil {
		if errors.Is(err, errUnchanged) {
			return before, nil
		}
		return models.Room{}, err
	}
	if sameRoom(before, working) {
		return working, nil
	}

	rooms[idx] = working
	if err := s.backend.Save(ctx, rooms); err != nil {
		return models.Room{}, fmt.Errorf("persist rooms: %w", err)
	}
	s.notifyLocked(working)
	return working.Clone(), nil
}

// Seed writes rooms only when no document exists yet. An existing document,
// readable or not, is left untouched.
func (s *RoomStore) Seed(ctx context.Context, rooms []models.Room) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.backend.Load(ctx)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, ErrNoDocument):
		return false, fmt.Errorf("%w: %w", ErrDocumentUnreadable, err)
	}
	if err := s.backend.Save(ctx, models.CloneRooms(rooms)); err != nil {
		return false, fmt.Errorf("seed rooms: %w", err)
	}
	return true, nil
}

func (s *RoomStore) loadLocked(ctx context.Context) []models.Room {
	rooms, err := s.backend.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoDocument) {
			s.log.Warn("room document unreadable, treating as empty", zap.Error(err))
		}
		return nil
	}

	repaired := VacateInconsistent(rooms)
	if len(repaired) > 0 {
		s.log.Warn("inconsistent rooms reset to available", zap.Ints("room_ids", repaired))
	}
	expired := append(ExpireAll(rooms, s.now()), repaired...)
	if len(expired) == 0 {
		return rooms
	}
	if err := s.backend.Save(ctx, rooms); err != nil {
		s.log.Error("failed to persist expired rooms", zap.Ints("room_ids", expired), zap.Error(err))
	} else {
		s.log.Info("bookings expired on read", zap.Ints("room_ids", expired))
	}
	for i := range rooms {
		for _, id := range expired {
			if rooms[i].ID == id {
				s.notifyLocked(rooms[i])
			}
		}
	}
	return rooms
}

func (s *RoomStore) notifyLocked(room models.Room) {
	if s.onChange != nil {
		s.onChange(room.Clone())
	}
}

func sameRoom(a, b models.Room) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Status != b.Status ||
		a.BookedBy != b.BookedBy || a.Purpose != b.Purpose || a.BookingCode != b.BookingCode {
		return false
	}
	if (a.EndTime == nil) != (b.EndTime == nil) {
		return false
	}
	return a.EndTime == nil || *a.EndTime == *b.EndTime
}
