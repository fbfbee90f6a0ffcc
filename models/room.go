package models

import "time"

type RoomStatus string

const (
	RoomAvailable RoomStatus = "available"
	RoomOccupied  RoomStatus = "occupied"
)

// Room is the persisted record of a bookable room.
// BookedBy, Purpose, EndTime and BookingCode are set only while the room is occupied.
type Room struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Status      RoomStatus `json:"status"`
	BookedBy    string     `json:"bookedBy,omitempty"`
	Purpose     string     `json:"purpose,omitempty"`
	EndTime     *int64     `json:"endTime,omitempty"` // epoch milliseconds
	BookingCode string     `json:"bookingCode,omitempty"`
}

// PublicRoom is what the listing endpoints return. It never carries the booking code.
type PublicRoom struct {
	ID       int        `json:"id"`
	Name     string     `json:"name"`
	Status   RoomStatus `json:"status"`
	BookedBy string     `json:"bookedBy,omitempty"`
	Purpose  string     `json:"purpose,omitempty"`
	EndTime  *int64     `json:"endTime,omitempty"`
}

func (r Room) Public() PublicRoom {
	p := PublicRoom{
		ID:       r.ID,
		Name:     r.Name,
		Status:   r.Status,
		BookedBy: r.BookedBy,
		Purpose:  r.Purpose,
	}
	if r.EndTime != nil {
		end := *r.EndTime
		p.EndTime = &end
	}
	return p
}

func (r Room) IsOccupied() bool {
	return r.Status == RoomOccupied
}

// EndsAt returns the booking end as a time.Time, or the zero time when unset.
func (r Room) EndsAt() time.Time {
	if r.EndTime == nil {
		return time.Time{}
	}
	return time.UnixMilli(*r.EndTime)
}

// Occupy puts the room into the occupied state with a fresh booking.
func (r *Room) Occupy(bookedBy, purpose, code string, end time.Time) {
	ms := end.UnixMilli()
	r.Status = RoomOccupied
	r.BookedBy = bookedBy
	r.Purpose = purpose
	r.EndTime = &ms
	r.BookingCode = code
}

// Vacate clears every occupancy field.
func (r *Room) Vacate() {
	r.Status = RoomAvailable
	r.BookedBy = ""
	r.Purpose = ""
	r.EndTime = nil
	r.BookingCode = ""
}

// Consistent reports whether status and occupancy fields agree.
func (r Room) Consistent() bool {
	switch r.Status {
	case RoomOccupied:
		return r.BookedBy != "" && r.Purpose != "" && r.EndTime != nil && r.BookingCode != ""
	case RoomAvailable:
		return r.BookedBy == "" && r.Purpose == "" && r.EndTime == nil && r.BookingCode == ""
	default:
		return false
	}
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (r Room) Clone() Room {
	c := r
	if r.EndTime != nil {
		end := *r.EndTime
		c.EndTime = &end
	}
	return c
}

func CloneRooms(rooms []Room) []Room {
	out := make([]Room, len(rooms))
	for i := range rooms {
		out[i] = rooms[i].Clone()
	}
	return out
}

func PublicRooms(rooms []Room) []PublicRoom {
	out := make([]PublicRoom, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Public())
	}
	return out
}
