package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"roombook-backend/models"

	"go.uber.org/zap"
)

// DefaultRooms provisions count available rooms named "<prefix> <n>".
func DefaultRooms(count int, prefix string) []models.Room {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "Room"
	}
	rooms := make([]models.Room, 0, count)
	for i := 1; i <= count; i++ {
		rooms = append(rooms, models.Room{
			ID:     i,
			Name:   fmt.Sprintf("%s %d", prefix, i),
			Status: models.RoomAvailable,
		})
	}
	return rooms
}

// SeedRooms writes the default rooms when the store has never been written.
// An existing but unreadable document is logged and left as is.
func SeedRooms(ctx context.Context, store *RoomStore, count int, prefix string, log *zap.Logger) error {
	seeded, err := store.Seed(ctx, DefaultRooms(count, prefix))
	if errors.Is(err, ErrDocumentUnreadable) {
		// left untouched; reads fail open to an empty listing
		log.Warn("room document unreadable, skipping seed", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if seeded {
		log.Info("rooms seeded", zap.Int("count", count))
	} else {
		log.Info("rooms already provisioned")
	}
	return nil
}
