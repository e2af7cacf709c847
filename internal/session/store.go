// Package session provides keyed storage for per-user game sessions.
// Two implementations ship: an in-memory map for single-process use
// and a sqlite-backed store for restarts. Both hand out deep copies so
// callers can mutate freely and commit with Put.
package session

import (
	"context"
	"errors"

	"github.com/avkor/shelltrack/internal/game"
)

// ErrNotFound reports an operation on a user with no stored session.
var ErrNotFound = errors.New("session not found")

// Store maps a user identity to their session record.
type Store interface {
	// Get returns a copy of the user's session, or ok=false when absent.
	Get(ctx context.Context, userID string) (s *game.Session, ok bool, err error)

	// Put stores a copy of the session under the user's identity,
	// creating or replacing.
	Put(ctx context.Context, userID string, s *game.Session) error

	// ClearPreserving resets the user's game fields back to the setup
	// phase, keeping the language tag. Missing users return ErrNotFound.
	ClearPreserving(ctx context.Context, userID string) error

	// Delete removes the user's session entirely.
	Delete(ctx context.Context, userID string) error
}
