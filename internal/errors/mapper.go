// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Engine error taxonomy. The engine's contract is idempotency, not
// failure transparency: storage-level constraint violations and race
// losses are translated into these sentinels, never surfaced raw.
var (
	// ErrAlreadyDecided is returned when a (user, announcement) pair
	// already carries a decision.
	ErrAlreadyDecided = errors.New("already decided")

	// ErrNotFound is returned for undo with no pending view, or when a
	// referenced announcement no longer exists.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDirection is returned for a direction outside
	// {LIKE, DISLIKE}. Rejected at the boundary, never persisted.
	ErrInvalidDirection = errors.New("invalid swipe direction")

	// ErrSelfDecision is returned when a user swipes on their own
	// announcement.
	ErrSelfDecision = errors.New("cannot decide on own announcement")
)

// Map converts repo/infra errors into engine errors.
// Keeps the service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrAlreadyDecided),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidDirection),
		errors.Is(err, ErrSelfDecision):
		// already an engine error
		return err

	case errors.Is(err, gorm.ErrDuplicatedKey):
		// unique-constraint loser of a concurrent append
		return ErrAlreadyDecided

	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return err

	default:
		return fmt.Errorf("storage: %w", err)
	}
}
