package driver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/hangulize/internal/db/sqlite"
)

func TestIsPostgres(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"postgres://localhost/hangulize", true},
		{"postgresql://u:p@db:5432/x", true},
		{"sqlite://history.db", false},
		{"history.db", false},
		{":memory:", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPostgres(tt.url), tt.url)
	}
}

func TestOpenSQLite(t *testing.T) {
	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer repo.Close()

	assert.IsType(t, &sqlite.Repository{}, repo)
	assert.NoError(t, repo.Ping(context.Background()))
}
