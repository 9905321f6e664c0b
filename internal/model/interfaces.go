package model

import (
	"context"
	"time"
)

// TextCompleter sends a system instruction and a user payload to an
// AI-assisted text service and returns its raw reply.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Notifier delivers a digest of listings somewhere a person will see it.
type Notifier interface {
	Notify(listings []Listing) error
}

// ListingFilter decides whether a listing should be shown to the caller.
type ListingFilter interface {
	Match(l Listing) bool
}

// ListingStore remembers which listing IDs have already been delivered.
type ListingStore interface {
	HasSeen(id string) (bool, error)
	MarkSeen(id string) error
	Cleanup(olderThan time.Duration) error
	IsEmpty() (bool, error)
}
