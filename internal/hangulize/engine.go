// Package hangulize runs a language's notation over input text and
// assembles the resulting phonemes into Hangul.
package hangulize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/hangulize/internal/hangul"
	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/metrics"
	"github.com/jusunglee/hangulize/internal/pattern"
	"github.com/jusunglee/hangulize/internal/rewrite"
)

// RuleError identifies the rule that aborted a transcription. Index is -1
// for the steps the pipeline runs around the notation.
type RuleError struct {
	Language string
	Index    int
	Pattern  string
	Err      error
}

func (e *RuleError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: pipeline step %q: %v", e.Language, e.Pattern, e.Err)
	}
	return fmt.Sprintf("%s: rule %d %q: %v", e.Language, e.Index, e.Pattern, e.Err)
}

func (e *RuleError) Unwrap() error { return e.Err }

var errStashUnderflow = errors.New("stash placeholder without stashed text")

// Result is one transcription. Trace lists every rule application,
// including the pipeline's own steps, and is meant for display only.
type Result struct {
	Language string
	Input    string
	Phonemes []hangul.Phoneme
	Output   string
	Trace    []rewrite.Step
}

// Engine transcribes text. It holds no per-call state and is safe for
// concurrent use.
type Engine struct {
	cache  *pattern.Cache
	logger *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCache shares a compiled pattern cache between engines.
func WithCache(c *pattern.Cache) Option {
	return func(e *Engine) { e.cache = c }
}

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = pattern.NewCache()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e
}

// Cache returns the engine's compiled pattern cache.
func (e *Engine) Cache() *pattern.Cache { return e.cache }

var (
	stashRule = rewrite.Rule{
		Pattern: "<" + language.StashVar + ">",
		Action: rewrite.Compute(func(buf *rewrite.Buffer, m pattern.Match) (rewrite.Action, error) {
			buf.Push(m.Text())
			return rewrite.Verbatim(string(pattern.Stash)), nil
		}),
	}
	temporaryRule = rewrite.Rule{
		Pattern: "<" + language.TemporaryVar + ">",
		Action:  rewrite.Delete(),
	}
	restoreRule = rewrite.Rule{
		Pattern: string(pattern.Stash),
		Action: rewrite.Compute(func(buf *rewrite.Buffer, _ pattern.Match) (rewrite.Action, error) {
			s, ok := buf.Pop()
			if !ok {
				return rewrite.Action{}, errStashUnderflow
			}
			return rewrite.Verbatim(s), nil
		}),
	}
	cleanupRules = []rewrite.Rule{
		{Pattern: string(pattern.Edge), Action: rewrite.Delete()},
		{Pattern: string(pattern.ZeroWidth), Action: rewrite.Delete()},
		{Pattern: string(pattern.Blank), Action: rewrite.Verbatim(" ")},
	}
)

// Transcribe runs the notation of lang over input and returns the
// flattened phonemes. Text no rule resolved is kept as impurities.
func (e *Engine) Transcribe(lang *language.Language, input string) (Result, error) {
	res := Result{Language: lang.Code(), Input: input}
	start := time.Now()
	err := e.transcribe(lang, &res)
	metrics.TranscriptionDuration.WithLabelValues(lang.Code()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TranscriptionsTotal.WithLabelValues(lang.Code(), "error").Inc()
		return res, err
	}
	metrics.TranscriptionsTotal.WithLabelValues(lang.Code(), "ok").Inc()
	return res, nil
}

func (e *Engine) transcribe(lang *language.Language, res *Result) error {
	text := strings.Map(func(r rune) rune {
		if pattern.IsMarker(r) {
			return -1
		}
		return r
	}, res.Input)
	text = lang.Normalize(text)
	text = strings.ReplaceAll(text, " ", string(pattern.Blank))

	buf := rewrite.NewBuffer(string(pattern.Edge) + text + string(pattern.Edge))

	if stash, _ := lang.Variable(language.StashVar); len(stash) > 0 {
		if err := e.step(lang, buf, res, -1, stashRule); err != nil {
			return err
		}
	}
	for i, rule := range lang.Notation() {
		if err := e.step(lang, buf, res, i, rule); err != nil {
			return err
		}
	}
	if temp, _ := lang.Variable(language.TemporaryVar); len(temp) > 0 {
		if err := e.step(lang, buf, res, -1, temporaryRule); err != nil {
			return err
		}
	}
	if buf.Stashed() > 0 {
		if err := e.step(lang, buf, res, -1, restoreRule); err != nil {
			return err
		}
	}
	for _, rule := range cleanupRules {
		if err := e.step(lang, buf, res, -1, rule); err != nil {
			return err
		}
	}

	res.Phonemes = buf.Flatten()
	return nil
}

func (e *Engine) step(lang *language.Language, buf *rewrite.Buffer, res *Result, index int, rule rewrite.Rule) error {
	wrap := func(err error) error {
		return &RuleError{Language: lang.Code(), Index: index, Pattern: rule.Pattern, Err: err}
	}
	m, err := e.cache.Matcher(rule.Pattern, lang)
	if err != nil {
		return wrap(err)
	}
	step, err := rewrite.Apply(buf, rule, m)
	if err != nil {
		return wrap(err)
	}
	res.Trace = append(res.Trace, step)
	if step.Matches > 0 {
		e.logger.Debug("rule applied",
			"lang", lang.Code(),
			"rule", index,
			"pattern", rule.Pattern,
			"action", step.Action.String(),
			"matches", step.Matches,
			"result", step.Result,
		)
	}
	return nil
}

// Hangulize transcribes input and renders it as Hangul. A syllable with a
// component outside the Hangul inventory renders as U+FFFD and is reported
// in the error; the rest of the output is still returned.
func (e *Engine) Hangulize(lang *language.Language, input string) (Result, error) {
	res, err := e.Transcribe(lang, input)
	if err != nil {
		return res, err
	}
	out, err := hangul.Render(hangul.Assemble(res.Phonemes))
	res.Output = out
	if err != nil {
		return res, fmt.Errorf("%s: rendering %q: %w", lang.Code(), input, err)
	}
	return res, nil
}

// HangulizeAll runs Hangulize over inputs in parallel. Results keep the
// order of inputs; the first failure cancels the rest.
func (e *Engine) HangulizeAll(ctx context.Context, lang *language.Language, inputs []string) ([]Result, error) {
	results := make([]Result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.Hangulize(lang, in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
