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

// PostgresTemplateRepository implements repositories.TemplateRepository
type PostgresTemplateRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(config *RepositoryConfig) repositories.TemplateRepository {
	return &PostgresTemplateRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const templateColumns = `id, user_id, company_id, name, department, recipient_company,
	template_data, is_shared, created_at, updated_at`

func scanTemplate(row rowScanner) (*models.Template, error) {
	var (
		t    models.Template
		data []byte
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CompanyID,
		&t.Name,
		&t.Department,
		&t.RecipientCompany,
		&data,
		&t.IsShared,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &t.Data); err != nil {
		return nil, fmt.Errorf("decode template_data: %w", err)
	}
	return &t, nil
}

// Create inserts a template
func (r *PostgresTemplateRepository) Create(ctx context.Context, t *models.Template) error {
	data, err := json.Marshal(t.Data)
	if err != nil {
		return fmt.Errorf("encode template_data: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, company_id, name, department, recipient_company, template_data, is_shared)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		t.UserID,
		t.CompanyID,
		t.Name,
		t.Department,
		t.RecipientCompany,
		data,
		t.IsShared,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("company %s: %w", derefString(t.CompanyID), domain.ErrNotFound)
		}
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

// GetByID returns a template the user owns or that is shared.
func (r *PostgresTemplateRepository) GetByID(ctx context.Context, id, userID string) (*models.Template, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND (user_id = $2 OR is_shared)
	`, templateColumns, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	t, err := scanTemplate(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

// List returns the user's templates and every shared one, newest first.
func (r *PostgresTemplateRepository) List(ctx context.Context, userID string) ([]models.Template, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 OR is_shared
		ORDER BY created_at DESC
	`, templateColumns, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return templates, nil
}

// Delete removes a template. Shared templates can only be deleted by their owner.
func (r *PostgresTemplateRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Templates)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		if IsPgInvalidInputError(err) {
			return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete template: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
