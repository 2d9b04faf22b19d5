package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"transmittal/internal/domain/repositories"
)

// Sequences returns the offline counter store used when no cloud database is configured.
func (s *Store) Sequences() repositories.SequenceRepository {
	return &sequenceRepository{db: s.db}
}

type sequenceRepository struct {
	db *sql.DB
}

func (r *sequenceRepository) Increment(ctx context.Context, userID string, year int, userCode string) (int, error) {
	var seq int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sequences (user_id, year, current_sequence, user_code)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(user_id, year) DO UPDATE SET
			current_sequence = current_sequence + 1,
			user_code = excluded.user_code,
			updated_at = CURRENT_TIMESTAMP
		RETURNING current_sequence`,
		userID, year, userCode).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("increment sequence: %w", err)
	}
	return seq, nil
}

func (r *sequenceRepository) Current(ctx context.Context, userID string, year int) (int, error) {
	var seq int
	err := r.db.QueryRowContext(ctx,
		`SELECT current_sequence FROM sequences WHERE user_id = ? AND year = ?`,
		userID, year).Scan(&seq)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get sequence: %w", err)
	}
	return seq, nil
}
