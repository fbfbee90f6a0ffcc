package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"roombook-backend/models"
	"roombook-backend/utils"

	"go.uber.org/zap"
)

// MaxMinutes is the largest minute count whose time.Duration does not overflow.
const MaxMinutes = math.MaxInt64 / int64(time.Minute)

type BookRequest struct {
	RoomID          int
	StudentName     string
	Purpose         string
	DurationMinutes int
}

type ExtendRequest struct {
	RoomID       int
	BookingCode  string
	ExtraMinutes int
}

type ReleaseRequest struct {
	RoomID      int
	BookingCode string
}

type BookResult struct {
	Message     string            `json:"message"`
	Room        models.PublicRoom `json:"room"`
	BookingCode string            `json:"bookingCode"`
}

type BookingResult struct {
	Message string            `json:"message"`
	Room    models.PublicRoom `json:"room"`
}

// BookingService applies the book / extend / release / expire transitions and
// keeps one expiry timer per occupied room.
type BookingService struct {
	store     *RoomStore
	scheduler Scheduler
	now       func() time.Time
	newCode   func() (string, error)
	log       *zap.Logger
}

func NewBookingService(store *RoomStore, scheduler Scheduler, now func() time.Time, log *zap.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &BookingService{
		store:     store,
		scheduler: scheduler,
		now:       now,
		newCode:   utils.GenerateBookingCode,
		log:       log,
	}
	store.OnChange(s.syncTimer)
	return s
}

// Start rebuilds the timer table from persisted state. Timers do not survive a
// restart, so this must run before serving requests.
func (s *BookingService) Start(ctx context.Context) int {
	scheduled := 0
	for _, room := range s.store.ReadAll(ctx) {
		if room.IsOccupied() && room.EndTime != nil {
			s.scheduleExpiry(room)
			scheduled++
		}
	}
	s.log.Info("expiry timers reconciled", zap.Int("scheduled", scheduled))
	return scheduled
}

func (s *BookingService) ListRooms(ctx context.Context) []models.PublicRoom {
	return models.PublicRooms(s.store.ReadAll(ctx))
}

func (s *BookingService) GetRoom(ctx context.Context, id int) (models.PublicRoom, error) {
	for _, room := range s.store.ReadAll(ctx) {
		if room.ID == id {
			return room.Public(), nil
		}
	}
	return models.PublicRoom{}, notFoundError()
}

func (s *BookingService) Book(ctx context.Context, req BookRequest) (BookResult, error) {
	name := strings.TrimSpace(req.StudentName)
	purpose := strings.TrimSpace(req.Purpose)
	if name == "" {
		return BookResult{}, validationError("Student name is required")
	}
	if purpose == "" {
		return BookResult{}, validationError("Purpose is required")
	}
	if req.DurationMinutes <= 0 {
		return BookResult{}, validationError("Duration must be a positive number of minutes")
	}
	if int64(req.DurationMinutes) > MaxMinutes {
		return BookResult{}, validationError("Duration is too large")
	}

	code, err := s.newCode()
	if err != nil {
		return BookResult{}, fmt.Errorf("generate booking code: %w", err)
	}

	room, err := s.store.WithRoom(ctx, req.RoomID, func(room *models.Room) error {
		if room.IsOccupied() {
			return conflictError("Room is already booked")
		}
		end := s.now().Add(time.Duration(req.DurationMinutes) * time.Minute)
		room.Occupy(name, purpose, code, end)
		return nil
	})
	if err != nil {
		return BookResult{}, err
	}

	s.log.Info("room booked",
		zap.Int("room_id", room.ID),
		zap.Int("duration_minutes", req.DurationMinutes),
		zap.Time("ends_at", room.EndsAt()),
	)
	return BookResult{
		Message:     "Room booked successfully",
		Room:        room.Public(),
		BookingCode: code,
	}, nil
}

func (s *BookingService) Extend(ctx context.Context, req ExtendRequest) (BookingResult, error) {
	if req.ExtraMinutes <= 0 {
		return BookingResult{}, validationError("Extra minutes must be a positive number of minutes")
	}
	if int64(req.ExtraMinutes) > MaxMinutes {
		return BookingResult{}, validationError("Extra minutes is too large")
	}
	extraMs := int64(req.ExtraMinutes) * time.Minute.Milliseconds()

	room, err := s.store.WithRoom(ctx, req.RoomID, func(room *models.Room) error {
		if !room.IsOccupied() || room.EndTime == nil {
			return conflictError("Room is not currently occupied")
		}
		if !utils.BookingCodesMatch(room.BookingCode, req.BookingCode) {
			return forbiddenError()
		}
		if extraMs > math.MaxInt64-*room.EndTime {
			return validationError("Extra minutes is too large")
		}
		end := *room.EndTime + extraMs
		room.EndTime = &end
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	s.log.Info("booking extended",
		zap.Int("room_id", room.ID),
		zap.Int("extra_minutes", req.ExtraMinutes),
		zap.Time("ends_at", room.EndsAt()),
	)
	return BookingResult{Message: "Booking extended successfully", Room: room.Public()}, nil
}

func (s *BookingService) Release(ctx context.Context, req ReleaseRequest) (BookingResult, error) {
	room, err := s.store.WithRoom(ctx, req.RoomID, func(room *models.Room) error {
		if !room.IsOccupied() {
			return conflictError("Room is not currently occupied")
		}
		if !utils.BookingCodesMatch(room.BookingCode, req.BookingCode) {
			return forbiddenError()
		}
		room.Vacate()
		return nil
	})
	if err != nil {
		return BookingResult{}, err
	}

	s.log.Info("room released", zap.Int("room_id", room.ID))
	return BookingResult{Message: "Room released successfully", Room: room.Public()}, nil
}

// syncTimer runs under the store lock whenever a room's persisted state changes.
func (s *BookingService) syncTimer(room models.Room) {
	if room.IsOccupied() && room.EndTime != nil {
		s.scheduleExpiry(room)
		return
	}
	s.scheduler.Cancel(room.ID)
}

func (s *BookingService) scheduleExpiry(room models.Room) {
	id := room.ID
	s.scheduler.Schedule(id, room.EndsAt(), func() { s.fireExpiry(id) })
}

// fireExpiry is the timer callback. It re-reads the room and only expires it
// when the stored booking is actually due.
func (s *BookingService) fireExpiry(id int) {
	ctx := context.Background()
	room, err := s.store.WithRoom(ctx, id, func(room *models.Room) error {
		if !room.IsOccupied() || room.EndTime == nil {
			return errUnchanged
		}
		if !IsDue(*room, s.now()) {
			// extended after this timer was armed
			s.scheduleExpiry(*room)
			return errUnchanged
		}
		ExpireIfDue(room, s.now())
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.Debug("expiry timer fired for unknown room", zap.Int("room_id", id))
			return
		}
		s.log.Warn("expiry timer failed", zap.Int("room_id", id), zap.Error(err))
		return
	}
	s.log.Debug("expiry timer handled", zap.Int("room_id", id), zap.String("status", string(room.Status)))
}

// ParseMinutes converts a caller supplied minute count, accepting only whole
// positive numbers no larger than MaxMinutes.
func ParseMinutes(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, validationError(field + " must be a positive whole number of minutes")
	}
	if int64(n) > MaxMinutes {
		return 0, validationError(field + " is too large")
	}
	return n, nil
}
