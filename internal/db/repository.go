package db

import (
	"context"
	"time"
)

// Transcription is one stored result. A (Language, Input) pair is stored
// once; Hits counts how often it was requested.
type Transcription struct {
	ID         int64
	Language   string
	Input      string
	Output     string
	Phonemes   string
	Hits       int64
	CreatedAt  time.Time
	LastUsedAt time.Time
}

type SaveTranscriptionParams struct {
	Language string
	Input    string
	Output   string
	Phonemes string
}

// ListTranscriptionsParams filters by language when Language is set.
type ListTranscriptionsParams struct {
	Language string
	Limit    int32
	Offset   int32
}

// Repository stores transcription history. Implementations exist for
// SQLite and PostgreSQL.
type Repository interface {
	// SaveTranscription inserts the pair or, if it exists, refreshes its
	// output, bumps Hits and LastUsedAt.
	SaveTranscription(ctx context.Context, arg SaveTranscriptionParams) (Transcription, error)
	GetTranscription(ctx context.Context, language, input string) (Transcription, error)
	ListTranscriptions(ctx context.Context, arg ListTranscriptionsParams) ([]Transcription, error)
	CountTranscriptions(ctx context.Context, language string) (int64, error)
	// DeleteTranscriptionsBefore removes rows last used before the cutoff.
	DeleteTranscriptionsBefore(ctx context.Context, before time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
