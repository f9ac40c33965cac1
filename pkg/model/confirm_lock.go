package model

import "time"

// ConfirmLock is an advisory lock keyed by employee/date/time that
// guards the pending -> confirmed transition against concurrent
// assignment of the same slot.
type ConfirmLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
