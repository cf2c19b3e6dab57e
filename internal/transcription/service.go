// Package transcription is the application layer shared by the HTTP API,
// the Discord bot and the CLI: it resolves languages, runs the engine and
// records history.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/jusunglee/hangulize/internal/db"
	"github.com/jusunglee/hangulize/internal/hangul"
	"github.com/jusunglee/hangulize/internal/hangulize"
	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/metrics"
	"github.com/jusunglee/hangulize/internal/rewrite"
)

const MaxTextLength = 500

var (
	ErrEmptyText   = errors.New("text is empty")
	ErrTextTooLong = fmt.Errorf("text is longer than %d characters", MaxTextLength)
	ErrNoHistory   = errors.New("history is not configured")
)

type Request struct {
	Language string `json:"language"`
	Text     string `json:"text"`
	Trace    bool   `json:"trace,omitempty"`
}

type Step struct {
	Pattern string `json:"pattern"`
	Action  string `json:"action"`
	Matches int    `json:"matches"`
	Result  string `json:"result"`
}

type Transcription struct {
	Language  string   `json:"language"`
	Input     string   `json:"input"`
	Output    string   `json:"output"`
	Romanized string   `json:"romanized"`
	Phonemes  []string `json:"phonemes"`
	Trace     []Step   `json:"trace,omitempty"`
	Hits      int64    `json:"hits,omitempty"`
}

type LanguageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Service struct {
	engine *hangulize.Engine
	langs  *language.Registry
	repo   db.Repository
	log    *slog.Logger
}

// NewService wires the engine to a registry. repo may be nil, in which
// case nothing is recorded.
func NewService(engine *hangulize.Engine, langs *language.Registry, repo db.Repository, log *slog.Logger) *Service {
	return &Service{engine: engine, langs: langs, repo: repo, log: log}
}

func (s *Service) Languages() []LanguageInfo {
	return lo.Map(s.langs.Languages(), func(l *language.Language, _ int) LanguageInfo {
		return LanguageInfo{Code: l.Code(), Name: l.Name()}
	})
}

func validate(text string) error {
	switch n := utf8.RuneCountInString(text); {
	case n == 0:
		return ErrEmptyText
	case n > MaxTextLength:
		return ErrTextTooLong
	}
	return nil
}

// Transcribe runs one request and records it in history when a
// repository is configured. History failures are logged, not returned.
func (s *Service) Transcribe(ctx context.Context, req Request) (Transcription, error) {
	if err := validate(req.Text); err != nil {
		return Transcription{}, err
	}
	lang, err := s.langs.Get(req.Language)
	if err != nil {
		return Transcription{}, err
	}
	res, err := s.engine.Hangulize(lang, req.Text)
	if err != nil {
		return Transcription{}, err
	}
	out := fromResult(res, req.Trace)
	out.Hits = s.record(ctx, res)
	return out, nil
}

// TranscribeBatch transcribes texts in one language, keeping their order.
func (s *Service) TranscribeBatch(ctx context.Context, code string, texts []string) ([]Transcription, error) {
	for _, text := range texts {
		if err := validate(text); err != nil {
			return nil, fmt.Errorf("%q: %w", text, err)
		}
	}
	lang, err := s.langs.Get(code)
	if err != nil {
		return nil, err
	}
	results, err := s.engine.HangulizeAll(ctx, lang, texts)
	if err != nil {
		return nil, err
	}
	return lo.Map(results, func(r hangulize.Result, _ int) Transcription {
		return fromResult(r, false)
	}), nil
}

func (s *Service) record(ctx context.Context, res hangulize.Result) int64 {
	if s.repo == nil {
		return 0
	}
	saved, err := s.repo.SaveTranscription(ctx, db.SaveTranscriptionParams{
		Language: res.Language,
		Input:    res.Input,
		Output:   res.Output,
		Phonemes: hangul.FormatPhonemes(res.Phonemes),
	})
	if err != nil {
		metrics.HistoryWrites.WithLabelValues("error").Inc()
		s.log.WarnContext(ctx, "failed to record transcription", "lang", res.Language, "error", err)
		return 0
	}
	metrics.HistoryWrites.WithLabelValues("ok").Inc()
	return saved.Hits
}

// History lists recorded transcriptions, newest first, with the total
// count for the same filter.
func (s *Service) History(ctx context.Context, code string, limit, offset int32) ([]db.Transcription, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrNoHistory
	}
	if code != "" {
		if _, err := s.langs.Get(code); err != nil {
			return nil, 0, err
		}
	}
	items, err := s.repo.ListTranscriptions(ctx, db.ListTranscriptionsParams{Language: code, Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountTranscriptions(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Prune deletes history last used before the cutoff.
func (s *Service) Prune(ctx context.Context, before time.Time) (int64, error) {
	if s.repo == nil {
		return 0, ErrNoHistory
	}
	return s.repo.DeleteTranscriptionsBefore(ctx, before)
}

func fromResult(res hangulize.Result, trace bool) Transcription {
	out := Transcription{
		Language:  res.Language,
		Input:     res.Input,
		Output:    res.Output,
		Romanized: hangul.Romanize(res.Output),
		Phonemes: lo.Map(res.Phonemes, func(p hangul.Phoneme, _ int) string {
			return p.String()
		}),
	}
	if trace {
		out.Trace = lo.FilterMap(res.Trace, func(st rewrite.Step, _ int) (Step, bool) {
			return Step{
				Pattern: st.Pattern,
				Action:  st.Action.String(),
				Matches: st.Matches,
				Result:  st.Result,
			}, st.Matches > 0
		})
	}
	return out
}
