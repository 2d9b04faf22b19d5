package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
)

// PostgresProfileRepository implements repositories.ProfileRepository
type PostgresProfileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(config *RepositoryConfig) repositories.ProfileRepository {
	return &PostgresProfileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByID returns the profile, or nil when the user has none yet.
func (r *PostgresProfileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	query := fmt.Sprintf(`
		SELECT id, email, full_name, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Profiles)

	var p models.Profile
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, userID).Scan(&p.ID, &p.Email, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// Upsert creates or updates the profile row
func (r *PostgresProfileRepository) Upsert(ctx context.Context, p *models.Profile) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, email, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			full_name = EXCLUDED.full_name,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`, r.tables.Profiles)

	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, p.ID, p.Email, p.FullName).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
