package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"transmittal/internal/domain/repositories"
)

// PostgresSequenceRepository implements repositories.SequenceRepository
type PostgresSequenceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(config *RepositoryConfig) repositories.SequenceRepository {
	return &PostgresSequenceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Increment creates or bumps the counter in a single statement, so two
// concurrent callers can never receive the same value.
func (r *PostgresSequenceRepository) Increment(ctx context.Context, userID string, year int, userCode string) (int, error) {
	query := fmt.Sprintf(`
		INSERT INTO %[1]s (user_id, year, current_sequence, user_code)
		VALUES ($1, $2, 1, $3)
		ON CONFLICT (user_id, year) DO UPDATE SET
			current_sequence = %[1]s.current_sequence + 1,
			user_code = EXCLUDED.user_code,
			updated_at = NOW()
		RETURNING current_sequence
	`, r.tables.TransmittalSequences)

	var seq int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, userID, year, userCode).Scan(&seq); err != nil {
		return 0, fmt.Errorf("increment sequence: %w", err)
	}
	return seq, nil
}

// Current returns the counter, 0 when the user has no row for year.
func (r *PostgresSequenceRepository) Current(ctx context.Context, userID string, year int) (int, error) {
	query := fmt.Sprintf(`
		SELECT current_sequence
		FROM %s
		WHERE user_id = $1 AND year = $2
	`, r.tables.TransmittalSequences)

	var seq int
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID, year).Scan(&seq)
	if err != nil {
		if IsPgNoRowsError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get sequence: %w", err)
	}
	return seq, nil
}
