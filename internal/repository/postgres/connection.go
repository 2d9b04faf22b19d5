package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"transmittal/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names
type TableNames struct {
	Profiles             string
	Companies            string
	Templates            string
	Transmittals         string
	TransmittalHistory   string
	TransmittalSequences string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Profiles:             fmt.Sprintf("%sprofiles", prefix),
		Companies:            fmt.Sprintf("%scompanies", prefix),
		Templates:            fmt.Sprintf("%stemplates", prefix),
		Transmittals:         fmt.Sprintf("%stransmittals", prefix),
		TransmittalHistory:   fmt.Sprintf("%stransmittal_history", prefix),
		TransmittalSequences: fmt.Sprintf("%stransmittal_sequences", prefix),
	}
}

// All returns every table, children before parents, for drop and clear operations.
func (t *TableNames) All() []string {
	return []string{
		t.TransmittalHistory,
		t.Transmittals,
		t.Templates,
		t.TransmittalSequences,
		t.Companies,
		t.Profiles,
	}
}

// CreateConnectionPool opens a pgx pool against the Supabase database.
//
// Port 6543 is Supabase's transaction pooler, which cannot hold prepared
// statements. On that port the pool switches to QueryExecModeCacheDescribe
// unless the URL already sets default_query_exec_mode. JSONB columns need the
// extended protocol, so simple_protocol is not used automatically.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		slog.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction stored in ctx, or the pool when there is none.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}
