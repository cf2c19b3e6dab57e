package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	once   sync.Once
	logger *slog.Logger
)

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
)

// PrettyHandler writes one colourised line per record for terminals.
type PrettyHandler struct {
	w     io.Writer
	level slog.Leveler
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func NewPrettyHandler(w io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{w: w, level: level, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var levelColor, levelText string
	switch {
	case r.Level >= slog.LevelError:
		levelColor, levelText = red, "ERR"
	case r.Level >= slog.LevelWarn:
		levelColor, levelText = yellow, "WRN"
	case r.Level >= slog.LevelInfo:
		levelColor, levelText = green, "INF"
	default:
		levelColor, levelText = gray, "DBG"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s%s %s%-3s%s %s",
		gray, r.Time.Format("15:04:05"), reset,
		levelColor, levelText, reset,
		r.Message,
	)
	write := func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s%s%s=%v", cyan, key, reset, a.Value)
		return true
	}
	for _, a := range h.attrs {
		write(a)
	}
	r.Attrs(write)
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if clone.group != "" {
		name = clone.group + "." + name
	}
	clone.group = name
	return &clone
}

// ParseLevel maps LOG_LEVEL values to slog levels; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w. format "json" selects the JSON
// handler; anything else the pretty one.
func New(w io.Writer, format, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(NewPrettyHandler(w, opts.Level))
}

// Init configures the process logger from LOG_FORMAT and LOG_LEVEL and
// makes it the slog default. Output goes to stderr so the CLI can keep
// stdout for results.
func Init() *slog.Logger {
	once.Do(func() {
		logger = New(os.Stderr, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
		slog.SetDefault(logger)
	})
	return logger
}

func Get() *slog.Logger {
	if logger == nil {
		return Init()
	}
	return logger
}
