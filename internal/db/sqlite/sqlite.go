package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jusunglee/hangulize/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// Timestamps are stored as fixed-width UTC text so they sort as strings.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Repository implements db.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ db.Repository = (*Repository)(nil)

// New opens (and if needed initializes) a SQLite database. ":memory:"
// opens a private in-memory database.
func New(ctx context.Context, dbPath string) (*Repository, error) {
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection would otherwise see its own empty database.
		sqliteDB.SetMaxOpenConns(1)
	}

	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	slog.Debug("opened SQLite database", "path", dbPath)

	return &Repository{db: sqliteDB, now: time.Now}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) SaveTranscription(ctx context.Context, arg db.SaveTranscriptionParams) (db.Transcription, error) {
	now := r.now().UTC().Format(timeLayout)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcriptions (language, input, output, phonemes, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (language, input) DO UPDATE SET
			output = excluded.output,
			phonemes = excluded.phonemes,
			hits = transcriptions.hits + 1,
			last_used_at = excluded.last_used_at
	`, arg.Language, arg.Input, arg.Output, arg.Phonemes, now, now)
	if err != nil {
		return db.Transcription{}, err
	}
	return r.GetTranscription(ctx, arg.Language, arg.Input)
}

func (r *Repository) GetTranscription(ctx context.Context, language, input string) (db.Transcription, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, language, input, output, phonemes, hits, created_at, last_used_at
		FROM transcriptions
		WHERE language = ? AND input = ?
	`, language, input)
	return scanTranscription(row)
}

func (r *Repository) ListTranscriptions(ctx context.Context, arg db.ListTranscriptionsParams) ([]db.Transcription, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, language, input, output, phonemes, hits, created_at, last_used_at
		FROM transcriptions
		WHERE (? = '' OR language = ?)
		ORDER BY last_used_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, arg.Language, arg.Language, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []db.Transcription
	for rows.Next() {
		t, err := scanTranscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *Repository) CountTranscriptions(ctx context.Context, language string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM transcriptions WHERE (? = '' OR language = ?)
	`, language, language).Scan(&count)
	return count, err
}

func (r *Repository) DeleteTranscriptionsBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM transcriptions WHERE last_used_at < ?
	`, before.UTC().Format(timeLayout))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTranscription(row scanner) (db.Transcription, error) {
	var t db.Transcription
	var createdAt, lastUsedAt string
	err := row.Scan(&t.ID, &t.Language, &t.Input, &t.Output, &t.Phonemes, &t.Hits, &createdAt, &lastUsedAt)
	if err != nil {
		return db.Transcription{}, err
	}
	t.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	t.LastUsedAt, _ = time.Parse(timeLayout, lastUsedAt)
	return t, nil
}
