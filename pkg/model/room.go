package model

import "time"

type Room struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location  string    `json:"location" bson:"location" validate:"omitempty,max=200"`
	Capacity  int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// RoomState is the point-in-time answer to "does this room exist and can
// it be booked", as served to other services.
type RoomState struct {
	Exists bool `json:"exists"`
	Active bool `json:"active"`
}
