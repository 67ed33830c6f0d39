package sessions

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// also returned for sessions owned by someone else
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// a to-do conversation whose state lives in the kv backend under its ID
type Session struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// tracked session plus the lock that serializes assistant runs on it
type entry struct {
	Session
	run sync.Mutex
}

// called with the ID of every session removed by Sweep or Delete
type ExpireFunc func(ctx context.Context, sessionID string) error
