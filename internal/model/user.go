package model

import (
	"time"
)

// User represents a registered account.
// Nickname is unique across all users (case-sensitive). Password is stored
// and compared verbatim — the observed behavior of the system this preserves;
// a known security gap, kept deliberately rather than silently changing the
// authentication semantics. SubscriberCount is a denormalized cache of the
// number of subscriptions targeting this user as a channel, maintained
// incrementally by the subscription toggle.
type User struct {
	ID              string    `json:"id"`
	Nickname        string    `json:"nickname"`
	Password        string    `json:"password"`
	SubscriberCount int64     `json:"subscriberCount"`
	Avatar          *string   `json:"avatar"`
	CreatedAt       time.Time `json:"createdAt"`
}
