package services

import (
	"time"

	"roombook-backend/models"
)

// IsDue reports whether an occupied room's booking has lapsed at now.
func IsDue(room models.Room, now time.Time) bool {
	return room.IsOccupied() && room.EndTime != nil && *room.EndTime <= now.UnixMilli()
}

// ExpireIfDue vacates the room when its booking has lapsed. The lazy read path
// and the expiry timers both go through here.
func ExpireIfDue(room *models.Room, now time.Time) bool {
	if !IsDue(*room, now) {
		return false
	}
	room.Vacate()
	return true
}

// ExpireAll applies ExpireIfDue to every room and returns the ids it vacated.
func ExpireAll(rooms []models.Room, now time.Time) []int {
	var expired []int
	for i := range rooms {
		if ExpireIfDue(&rooms[i], now) {
			expired = append(expired, rooms[i].ID)
		}
	}
	return expired
}

// VacateInconsistent resets rooms whose status and occupancy fields disagree,
// such as an occupied room without an end time that would otherwise never expire.
func VacateInconsistent(rooms []models.Room) []int {
	var repaired []int
	for i := range rooms {
		if !rooms[i].Consistent() {
			rooms[i].Vacate()
			repaired = append(repaired, rooms[i].ID)
		}
	}
	return repaired
}
