package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
)

// PostgresCompanyRepository implements repositories.CompanyRepository
type PostgresCompanyRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(config *RepositoryConfig) repositories.CompanyRepository {
	return &PostgresCompanyRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const companyColumns = `id, owner_id, name, logo_url, contact_details, color_scheme, created_at, updated_at`

func scanCompany(row rowScanner) (*models.Company, error) {
	var (
		c      models.Company
		scheme []byte
	)
	if err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.LogoURL, &c.ContactDetails, &scheme, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(scheme, &c.ColorScheme); err != nil {
		return nil, fmt.Errorf("decode color_scheme: %w", err)
	}
	return &c, nil
}

// Create inserts a company
func (r *PostgresCompanyRepository) Create(ctx context.Context, c *models.Company) error {
	scheme, err := json.Marshal(c.ColorScheme)
	if err != nil {
		return fmt.Errorf("encode color_scheme: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (owner_id, name, logo_url, contact_details, color_scheme)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, r.tables.Companies)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query, c.OwnerID, c.Name, c.LogoURL, c.ContactDetails, scheme).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

// GetByID retrieves a company by ID
func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id, ownerID string) (*models.Company, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND owner_id = $2
	`, companyColumns, r.tables.Companies)

	executor := GetExecutor(ctx, r.pool)
	c, err := scanCompany(executor.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return c, nil
}

// List returns the owner's companies by name.
func (r *PostgresCompanyRepository) List(ctx context.Context, ownerID string) ([]models.Company, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE owner_id = $1
		ORDER BY name
	`, companyColumns, r.tables.Companies)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

// Delete removes a company. Records and templates pointing at it keep a NULL company.
func (r *PostgresCompanyRepository) Delete(ctx context.Context, id, ownerID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, r.tables.Companies)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, ownerID)
	if err != nil {
		if IsPgInvalidInputError(err) {
			return fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete company: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("company %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
