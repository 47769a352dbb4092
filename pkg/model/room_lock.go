package model

import "time"

// RoomLock is a database-level advisory lock keyed by room id. The unique _id
// insert serializes mutators across service instances sharing one database;
// the TTL index on expires_at reclaims locks orphaned by a crashed holder.
type RoomLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
