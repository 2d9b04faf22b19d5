package services

import "context"

// NumberAllocator issues sequential transmittal numbers.
type NumberAllocator interface {
	// NextNumber increments the caller's counter for the current year and
	// returns the formatted number. Store failures are returned.
	NextNumber(ctx context.Context, userID, displayName string) (string, error)

	// NumberOrFallback never fails: anonymous callers get the USR sentinel and
	// store failures the ERR sentinel, both dated today.
	NumberOrFallback(ctx context.Context, userID, displayName string) string

	// CurrentSequence returns the caller's counter for the current year (0 if none).
	CurrentSequence(ctx context.Context, userID string) (int, error)
}
