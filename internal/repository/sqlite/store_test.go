package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transmittal/internal/domain"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "local.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Put(ctx, "gemini_api_key", "k1"))
	require.NoError(t, s.Put(ctx, "gemini_api_key", "k2"))
	got, err := s.Get(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "k2", got)

	require.NoError(t, s.Delete(ctx, "gemini_api_key"))
	_, err = s.Get(ctx, "gemini_api_key")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "smart_transmittal_settings", `{"sender":"Acme"}`))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "smart_transmittal_settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sender":"Acme"}`, got)
}

func TestSequences(t *testing.T) {
	ctx := context.Background()
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	seqs := s.Sequences()

	current, err := seqs.Current(ctx, "local", 2024)
	require.NoError(t, err)
	assert.Equal(t, 0, current)

	for want := 1; want <= 3; want++ {
		got, err := seqs.Increment(ctx, "local", 2024, "JDC")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// a new year starts over; other years are untouched
	got, err := seqs.Increment(ctx, "local", 2025, "JDC")
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	current, err = seqs.Current(ctx, "local", 2024)
	require.NoError(t, err)
	assert.Equal(t, 3, current)
}
