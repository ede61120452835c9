package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Booking is one reservation of a room for a half-open time interval
// [start_time, end_time). For any room the set of confirmed bookings is
// pairwise non-overlapping; the bookings service enforces that invariant.
type Booking struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID    string    `json:"user_id" bson:"user_id" validate:"required"`
	RoomID    string    `json:"room_id" bson:"room_id" validate:"required"`
	StartTime time.Time `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" bson:"end_time" validate:"required"`
	Status    string    `json:"status" bson:"status" validate:"omitempty,oneof=confirmed cancelled"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// BookingWindowUpdate rebooks an existing booking onto a new time window.
// The update runs under the same conflict check as creation, with the
// booking itself excluded from its own conflict set.
type BookingWindowUpdate struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
}

// Overlaps reports whether two half-open intervals conflict. Adjacent
// intervals (end1 == start2) do not.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
