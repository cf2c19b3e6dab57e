// e2e starts the HTTP API on a temporary SQLite database, drives every
// endpoint through a real TCP connection and checks the answers.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/jusunglee/hangulize/internal/db/sqlite"
	"github.com/jusunglee/hangulize/internal/hangulize"
	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/logger"
	"github.com/jusunglee/hangulize/internal/transcription"
	"github.com/jusunglee/hangulize/internal/web"
)

const adminKey = "e2e-admin"

var fixtures = []struct {
	lang, text, want string
}{
	{"ita", "Roma", "로마"},
	{"ita", "Giuseppe Verdi", "주세페 베르디"},
	{"ita", "Michelangelo", "미켈란젤로"},
	{"cmn", "北京", "베이징"},
	{"cmn", "毛泽东", "마오쩌둥"},
	{"cmn", "ni3 hao3", "니 하오"},
}

func main() {
	if err := run(); err != nil {
		slog.Error("E2E FAILED", "error", err)
		os.Exit(1)
	}
	slog.Info("E2E PASSED")
}

func run() error {
	_ = godotenv.Load()

	log := logger.Init()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("Phase 1: starting API on a temporary database...")
	dir, err := os.MkdirTemp("", "hangulize-e2e-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	repo, err := sqlite.New(ctx, filepath.Join(dir, "history.db"))
	if err != nil {
		return fmt.Errorf("creating temp SQLite: %w", err)
	}
	defer repo.Close()

	langs, err := language.Default()
	if err != nil {
		return fmt.Errorf("loading languages: %w", err)
	}
	svc := transcription.NewService(hangulize.New(hangulize.WithLogger(log)), langs, repo, log)
	router := web.NewRouter(svc, log, web.Config{AdminAPIKey: adminKey, RateLimit: 1000})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}
	server := &http.Server{Handler: router.Handler(ctx), ReadHeaderTimeout: 5 * time.Second}
	go server.Serve(ln)
	defer server.Shutdown(context.Background())

	c := &client{base: "http://" + ln.Addr().String(), http: &http.Client{Timeout: 10 * time.Second}}

	log.Info("Phase 2: checking languages...")
	var languages struct {
		Data []transcription.LanguageInfo `json:"data"`
	}
	if err := c.do(http.MethodGet, "/api/v1/languages", nil, http.StatusOK, &languages); err != nil {
		return err
	}
	if len(languages.Data) != len(langs.Codes()) {
		return fmt.Errorf("got %d languages, want %d", len(languages.Data), len(langs.Codes()))
	}

	log.Info("Phase 3: transcribing fixtures...")
	for _, f := range fixtures {
		var out transcription.Transcription
		req := transcription.Request{Language: f.lang, Text: f.text}
		if err := c.do(http.MethodPost, "/api/v1/transcriptions", req, http.StatusOK, &out); err != nil {
			return err
		}
		if out.Output != f.want {
			return fmt.Errorf("%s %q: got %q, want %q", f.lang, f.text, out.Output, f.want)
		}
		log.Info("transcribed", "lang", f.lang, "input", f.text, "output", out.Output)
	}

	log.Info("Phase 4: checking history...")
	var history struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := c.do(http.MethodGet, "/api/v1/transcriptions", nil, http.StatusOK, &history); err != nil {
		return err
	}
	if history.Pagination.Total != int64(len(fixtures)) {
		return fmt.Errorf("history has %d rows, want %d", history.Pagination.Total, len(fixtures))
	}

	log.Info("Phase 5: pruning history...")
	var pruned struct {
		Deleted int64 `json:"deleted"`
	}
	before := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	if err := c.do(http.MethodDelete, "/api/v1/transcriptions?before="+before, nil, http.StatusOK, &pruned); err != nil {
		return err
	}
	if pruned.Deleted != int64(len(fixtures)) {
		return fmt.Errorf("pruned %d rows, want %d", pruned.Deleted, len(fixtures))
	}
	return nil
}

type client struct {
	base string
	http *http.Client
}

func (c *client) do(method, path string, body any, wantStatus int, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", adminKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return fmt.Errorf("%s %s: status %d, want %d", method, path, resp.StatusCode, wantStatus)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(fmt.Errorf("%s %s: decoding response", method, path), err)
	}
	return nil
}
