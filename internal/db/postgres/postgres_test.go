package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/hangulize/internal/db"
)

// These tests need a disposable database: TEST_DATABASE_URL=postgres://...
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	repo, err := New(ctx, url)
	require.NoError(t, err)
	_, err = repo.pool.Exec(ctx, "TRUNCATE transcriptions")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTranscriptionHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.SaveTranscription(ctx, db.SaveTranscriptionParams{Language: "ita", Input: "Roma", Output: "로마", Phonemes: "ㄹ ㅗ ㅁ ㅏ"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Hits)

	again, err := repo.SaveTranscription(ctx, db.SaveTranscriptionParams{Language: "ita", Input: "Roma", Output: "로마", Phonemes: "ㄹ ㅗ ㅁ ㅏ"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, int64(2), again.Hits)

	_, err = repo.SaveTranscription(ctx, db.SaveTranscriptionParams{Language: "cmn", Input: "ni hao", Output: "니 하오", Phonemes: "ㄴ ㅣ"})
	require.NoError(t, err)

	list, err := repo.ListTranscriptions(ctx, db.ListTranscriptionsParams{Language: "ita", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Roma", list[0].Input)

	n, err := repo.CountTranscriptions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetTranscription(ctx, "ita", "Milano")
	assert.True(t, db.IsNoRows(err))

	deleted, err := repo.DeleteTranscriptionsBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}
