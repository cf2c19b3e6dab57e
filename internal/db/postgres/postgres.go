package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jusunglee/hangulize/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
}

var _ db.Repository = (*Repository)(nil)

// New connects and makes sure the schema exists.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Pool exposes the connection pool for stats reporting.
func (r *Repository) Pool() *pgxpool.Pool { return r.pool }

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

const columns = `id, language, input, output, phonemes, hits, created_at, last_used_at`

func (r *Repository) SaveTranscription(ctx context.Context, arg db.SaveTranscriptionParams) (db.Transcription, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO transcriptions (language, input, output, phonemes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (language, input) DO UPDATE SET
			output = EXCLUDED.output,
			phonemes = EXCLUDED.phonemes,
			hits = transcriptions.hits + 1,
			last_used_at = NOW()
		RETURNING `+columns,
		arg.Language, arg.Input, arg.Output, arg.Phonemes)
	return scanTranscription(row)
}

func (r *Repository) GetTranscription(ctx context.Context, language, input string) (db.Transcription, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+columns+`
		FROM transcriptions
		WHERE language = $1 AND input = $2
	`, language, input)
	return scanTranscription(row)
}

func (r *Repository) ListTranscriptions(ctx context.Context, arg db.ListTranscriptionsParams) ([]db.Transcription, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+columns+`
		FROM transcriptions
		WHERE ($1 = '' OR language = $1)
		ORDER BY last_used_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, arg.Language, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Transcription, error) {
		return scanTranscription(row)
	})
}

func (r *Repository) CountTranscriptions(ctx context.Context, language string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM transcriptions WHERE ($1 = '' OR language = $1)
	`, language).Scan(&count)
	return count, err
}

func (r *Repository) DeleteTranscriptionsBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transcriptions WHERE last_used_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanTranscription(row pgx.Row) (db.Transcription, error) {
	var t db.Transcription
	err := row.Scan(&t.ID, &t.Language, &t.Input, &t.Output, &t.Phonemes, &t.Hits, &t.CreatedAt, &t.LastUsedAt)
	if err != nil {
		return db.Transcription{}, err
	}
	return t, nil
}
