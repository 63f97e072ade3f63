package model

import (
	"time"
)

type Booking struct {
	ID           string    `json:"id" bson:"_id"`
	RoomID       string    `json:"room_id" bson:"room_id"`
	RoomName     string    `json:"room_name" bson:"room_name"`
	EmployeeName string    `json:"employee_name" bson:"employee_name"`
	EmployeeID   string    `json:"employee_id" bson:"employee_id"`
	StartTime    time.Time `json:"start_time" bson:"start_time"`
	EndTime      time.Time `json:"end_time" bson:"end_time"`
	Purpose      string    `json:"purpose" bson:"purpose"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// BookingRequest is the body of POST /api/meeting-rooms/:room_id/book.
// Timestamps stay raw strings until the normalizer has seen them.
type BookingRequest struct {
	EmployeeName string `json:"employee_name" validate:"required,notblank,max=100"`
	EmployeeID   string `json:"employee_id" validate:"required,notblank,max=50"`
	StartTime    string `json:"start_time" validate:"required,notblank"`
	EndTime      string `json:"end_time" validate:"required,notblank"`
	Purpose      string `json:"purpose" validate:"omitempty,max=500"`
}

// RoomLock is the advisory lock document guarding a room's check-then-insert.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
