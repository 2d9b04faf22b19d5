package postgres

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")

	assert.Equal(t, "dev_transmittals", tables.Transmittals)
	assert.Equal(t, "dev_transmittal_sequences", tables.TransmittalSequences)
	assert.Equal(t, []string{
		"dev_transmittal_history",
		"dev_transmittals",
		"dev_templates",
		"dev_transmittal_sequences",
		"dev_companies",
		"dev_profiles",
	}, tables.All())
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"tower", "tower"},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`c:\docs`, `c:\\docs`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeLike(tt.in))
	}
}

func TestErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	badUUID := &pgconn.PgError{Code: "22P02"}

	assert.True(t, IsPgDuplicateError(dup))
	assert.False(t, IsPgForeignKeyError(dup))
	assert.True(t, IsPgInvalidInputError(badUUID))
	assert.True(t, IsPgNoRowsError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsPgNoRowsError(dup))
}
