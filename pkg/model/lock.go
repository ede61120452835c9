package model

import "time"

// RoomLock is an advisory lock document. Inserting it succeeds for exactly
// one writer per room at a time because _id is the unique key; a duplicate
// key error means another request holds the room.
type RoomLock struct {
	ID        string    `bson:"_id"`
	Lease     string    `bson:"lease"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}
