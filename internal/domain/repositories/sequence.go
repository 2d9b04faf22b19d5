package repositories

import "context"

// SequenceRepository persists per-user, per-year document counters.
type SequenceRepository interface {
	// Increment bumps the (userID, year) counter, creating it at 1 when absent,
	// and returns the new value. Implementations must do this atomically.
	Increment(ctx context.Context, userID string, year int, userCode string) (int, error)

	// Current returns the counter value, or 0 when no row exists.
	Current(ctx context.Context, userID string, year int) (int, error)
}
