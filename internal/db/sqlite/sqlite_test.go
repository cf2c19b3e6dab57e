package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/hangulize/internal/db"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func save(t *testing.T, repo *Repository, lang, input, output string) db.Transcription {
	t.Helper()
	tr, err := repo.SaveTranscription(context.Background(), db.SaveTranscriptionParams{
		Language: lang,
		Input:    input,
		Output:   output,
		Phonemes: "ㄹ ㅗ ㅁ ㅏ",
	})
	require.NoError(t, err)
	return tr
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tr := save(t, repo, "ita", "Roma", "로마")
	assert.Equal(t, "ita", tr.Language)
	assert.Equal(t, "로마", tr.Output)
	assert.Equal(t, int64(1), tr.Hits)
	assert.False(t, tr.CreatedAt.IsZero())

	got, err := repo.GetTranscription(ctx, "ita", "Roma")
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)

	_, err = repo.GetTranscription(ctx, "ita", "Milano")
	assert.True(t, db.IsNoRows(err))
}

func TestSaveTwiceCountsHits(t *testing.T) {
	repo := newTestRepo(t)

	first := save(t, repo, "ita", "Roma", "로마")
	second := save(t, repo, "ita", "Roma", "로마!")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, int64(2), second.Hits)
	assert.Equal(t, "로마!", second.Output)

	other := save(t, repo, "cmn", "Roma", "로마")
	assert.NotEqual(t, first.ID, other.ID)
}

func TestListAndCount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, in := range []string{"Roma", "Milano", "Dante"} {
		repo.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		save(t, repo, "ita", in, "-")
	}
	save(t, repo, "cmn", "ni hao", "니 하오")

	list, err := repo.ListTranscriptions(ctx, db.ListTranscriptionsParams{Language: "ita", Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Dante", list[0].Input)
	assert.Equal(t, "Milano", list[1].Input)

	list, err = repo.ListTranscriptions(ctx, db.ListTranscriptionsParams{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list, 4)

	n, err := repo.CountTranscriptions(ctx, "ita")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.CountTranscriptions(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestDeleteBefore(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return old }
	save(t, repo, "ita", "Roma", "로마")
	repo.now = func() time.Time { return old.Add(48 * time.Hour) }
	save(t, repo, "ita", "Milano", "밀라노")

	deleted, err := repo.DeleteTranscriptionsBefore(ctx, old.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetTranscription(ctx, "ita", "Roma")
	assert.True(t, db.IsNoRows(err))
	_, err = repo.GetTranscription(ctx, "ita", "Milano")
	assert.NoError(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	repo, err := New(ctx, "sqlite://"+path)
	require.NoError(t, err)
	save(t, repo, "ita", "Roma", "로마")
	require.NoError(t, repo.Close())

	repo, err = New(ctx, path)
	require.NoError(t, err)
	defer repo.Close()
	got, err := repo.GetTranscription(ctx, "ita", "Roma")
	require.NoError(t, err)
	assert.Equal(t, "로마", got.Output)
}
