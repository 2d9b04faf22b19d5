package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
)

// PostgresTransmittalRepository implements repositories.TransmittalRepository
type PostgresTransmittalRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewTransmittalRepository creates a new transmittal repository
func NewTransmittalRepository(config *RepositoryConfig) repositories.TransmittalRepository {
	return &PostgresTransmittalRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

const transmittalColumns = `id, user_id, company_id, transmittal_number, status,
	project_details, items, table_columns, notes, follow_up_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransmittal(row rowScanner) (*models.Transmittal, error) {
	var (
		t                    models.Transmittal
		status               string
		details, items, cols []byte
	)
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CompanyID,
		&t.TransmittalNumber,
		&status,
		&details,
		&items,
		&cols,
		&t.Notes,
		&t.FollowUpDate,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = models.TransmittalStatus(status)

	if err := json.Unmarshal(details, &t.Details); err != nil {
		return nil, fmt.Errorf("decode project_details: %w", err)
	}
	if err := json.Unmarshal(items, &t.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(cols, &t.Columns); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	if t.Items == nil {
		t.Items = []models.TransmittalItem{}
	}
	if t.Columns == nil {
		t.Columns = []models.TableColumn{}
	}
	return &t, nil
}

type transmittalPayload struct {
	details, items, columns []byte
}

func encodeTransmittal(t *models.Transmittal) (*transmittalPayload, error) {
	details, err := json.Marshal(t.Details)
	if err != nil {
		return nil, fmt.Errorf("encode project_details: %w", err)
	}
	items := t.Items
	if items == nil {
		items = []models.TransmittalItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode items: %w", err)
	}
	cols := t.Columns
	if cols == nil {
		cols = []models.TableColumn{}
	}
	colsJSON, err := json.Marshal(cols)
	if err != nil {
		return nil, fmt.Errorf("encode columns: %w", err)
	}
	return &transmittalPayload{details: details, items: itemsJSON, columns: colsJSON}, nil
}

// Create inserts a record and fills in its id and timestamps.
func (r *PostgresTransmittalRepository) Create(ctx context.Context, t *models.Transmittal) error {
	payload, err := encodeTransmittal(t)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, company_id, transmittal_number, status,
			recipient_company, project_name, date,
			project_details, items, table_columns, notes, follow_up_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, r.tables.Transmittals)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		t.UserID,
		t.CompanyID,
		t.TransmittalNumber,
		string(t.Status),
		t.Details.RecipientCompany,
		t.Details.ProjectName,
		t.Details.Date,
		payload.details,
		payload.items,
		payload.columns,
		t.Notes,
		t.FollowUpDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("company %v: %w", derefString(t.CompanyID), domain.ErrNotFound)
		}
		return fmt.Errorf("create transmittal: %w", err)
	}
	return nil
}

// GetByID retrieves a record owned by userID.
func (r *PostgresTransmittalRepository) GetByID(ctx context.Context, id, userID string) (*models.Transmittal, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, transmittalColumns, r.tables.Transmittals)

	executor := GetExecutor(ctx, r.pool)
	t, err := scanTransmittal(executor.QueryRow(ctx, query, id, userID))
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("transmittal %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get transmittal: %w", err)
	}
	return t, nil
}

// List returns the owner's records matching filter, newest first.
func (r *PostgresTransmittalRepository) List(ctx context.Context, userID string, filter models.TransmittalFilter) ([]models.Transmittal, error) {
	conditions := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.CompanyID != "" {
		add("company_id::text = $%d", filter.CompanyID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.Search != "" {
		add("(transmittal_number ILIKE $%[1]d OR recipient_company ILIKE $%[1]d OR project_name ILIKE $%[1]d)",
			"%"+escapeLike(filter.Search)+"%")
	}
	if filter.DateFrom != "" {
		add("date >= $%d", filter.DateFrom)
	}
	if filter.DateTo != "" {
		add("date <= $%d", filter.DateTo)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_at DESC
	`, transmittalColumns, r.tables.Transmittals, strings.Join(conditions, " AND "))

	return r.query(ctx, query, args...)
}

// ListByIDs returns the owner's records among ids, newest first. Unknown ids are skipped.
func (r *PostgresTransmittalRepository) ListByIDs(ctx context.Context, userID string, ids []string) ([]models.Transmittal, error) {
	if len(ids) == 0 {
		return []models.Transmittal{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE user_id = $1 AND id::text = ANY($2)
		ORDER BY created_at DESC
	`, transmittalColumns, r.tables.Transmittals)

	return r.query(ctx, query, userID, ids)
}

func (r *PostgresTransmittalRepository) query(ctx context.Context, query string, args ...any) ([]models.Transmittal, error) {
	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transmittals: %w", err)
	}
	defer rows.Close()

	transmittals := []models.Transmittal{}
	for rows.Next() {
		t, err := scanTransmittal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transmittal: %w", err)
		}
		transmittals = append(transmittals, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transmittals: %w", err)
	}
	return transmittals, nil
}

// Update writes every mutable field of t.
func (r *PostgresTransmittalRepository) Update(ctx context.Context, t *models.Transmittal) error {
	payload, err := encodeTransmittal(t)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET company_id = $1,
			recipient_company = $2,
			project_name = $3,
			date = $4,
			project_details = $5,
			items = $6,
			table_columns = $7,
			notes = $8,
			follow_up_date = $9,
			updated_at = NOW()
		WHERE id = $10 AND user_id = $11
		RETURNING updated_at
	`, r.tables.Transmittals)

	executor := GetExecutor(ctx, r.pool)
	err = executor.QueryRow(ctx, query,
		t.CompanyID,
		t.Details.RecipientCompany,
		t.Details.ProjectName,
		t.Details.Date,
		payload.details,
		payload.items,
		payload.columns,
		t.Notes,
		t.FollowUpDate,
		t.ID,
		t.UserID,
	).Scan(&t.UpdatedAt)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return fmt.Errorf("transmittal %s: %w", t.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update transmittal: %w", err)
	}
	return nil
}

// SetStatus locks the row, stores the new status and returns the old one.
func (r *PostgresTransmittalRepository) SetStatus(ctx context.Context, id, userID string, status models.TransmittalStatus) (models.TransmittalStatus, error) {
	selectQuery := fmt.Sprintf(`
		SELECT status FROM %s
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, r.tables.Transmittals)
	updateQuery := fmt.Sprintf(`
		UPDATE %s SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, r.tables.Transmittals)

	executor := GetExecutor(ctx, r.pool)

	var previous string
	if err := executor.QueryRow(ctx, selectQuery, id, userID).Scan(&previous); err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidInputError(err) {
			return "", fmt.Errorf("transmittal %s: %w", id, domain.ErrNotFound)
		}
		return "", fmt.Errorf("read status: %w", err)
	}

	if _, err := executor.Exec(ctx, updateQuery, string(status), id, userID); err != nil {
		return "", fmt.Errorf("update status: %w", err)
	}
	return models.TransmittalStatus(previous), nil
}

// Delete removes a record and, by cascade, its history.
func (r *PostgresTransmittalRepository) Delete(ctx context.Context, id, userID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND user_id = $2`, r.tables.Transmittals)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id, userID)
	if err != nil {
		if IsPgInvalidInputError(err) {
			return fmt.Errorf("transmittal %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("delete transmittal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("transmittal %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AddHistory appends a status-change entry.
func (r *PostgresTransmittalRepository) AddHistory(ctx context.Context, entry *models.TransmittalHistory) error {
	var previous *string
	if entry.PreviousStatus != nil {
		s := string(*entry.PreviousStatus)
		previous = &s
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (transmittal_id, user_id, action, previous_status, new_status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, r.tables.TransmittalHistory)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		entry.TransmittalID,
		entry.UserID,
		entry.Action,
		previous,
		string(entry.NewStatus),
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("add history: %w", err)
	}
	return nil
}

// ListHistory returns a record's status changes, newest first.
func (r *PostgresTransmittalRepository) ListHistory(ctx context.Context, transmittalID, userID string) ([]models.TransmittalHistory, error) {
	query := fmt.Sprintf(`
		SELECT h.id, h.transmittal_id, h.user_id, h.action, h.previous_status, h.new_status, h.notes, h.created_at
		FROM %s h
		JOIN %s t ON t.id = h.transmittal_id
		WHERE h.transmittal_id = $1 AND t.user_id = $2
		ORDER BY h.created_at DESC
	`, r.tables.TransmittalHistory, r.tables.Transmittals)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, transmittalID, userID)
	if err != nil {
		if IsPgInvalidInputError(err) {
			return nil, fmt.Errorf("transmittal %s: %w", transmittalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	history := []models.TransmittalHistory{}
	for rows.Next() {
		var (
			h         models.TransmittalHistory
			previous  *string
			newStatus string
		)
		if err := rows.Scan(&h.ID, &h.TransmittalID, &h.UserID, &h.Action, &previous, &newStatus, &h.Notes, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if previous != nil {
			s := models.TransmittalStatus(*previous)
			h.PreviousStatus = &s
		}
		h.NewStatus = models.TransmittalStatus(newStatus)
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return history, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
