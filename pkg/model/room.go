package model

import "time"

const (
	RoomStatusOccupied = "occupied"
	RoomStatusVacant   = "vacant"
)

type MeetingRoom struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Location  string    `json:"location" bson:"location"`
	Floor     int       `json:"floor" bson:"floor"`
	Capacity  int       `json:"capacity" bson:"capacity"`
	Equipment string    `json:"equipment" bson:"equipment"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// RoomStatusView is a room annotated with its live occupancy.
type RoomStatusView struct {
	MeetingRoom
	Status         string     `json:"status"`
	CurrentBooking *Booking   `json:"current_booking"`
	Bookings       []*Booking `json:"bookings"`
}

// RoomFilter narrows ListWithStatus. Zero values match everything.
type RoomFilter struct {
	Location string
	Floor    *int
	Status   string
}
