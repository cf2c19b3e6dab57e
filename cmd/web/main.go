package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/jusunglee/hangulize/internal/db"
	"github.com/jusunglee/hangulize/internal/db/driver"
	"github.com/jusunglee/hangulize/internal/db/postgres"
	"github.com/jusunglee/hangulize/internal/hangulize"
	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/logger"
	"github.com/jusunglee/hangulize/internal/transcription"
	"github.com/jusunglee/hangulize/internal/web"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("hangulize-web")

	var (
		port           = fs_.Int64Long("port", 3000, "HTTP server port")
		databaseURL    = fs_.StringLong("database-url", "", "SQLite file or PostgreSQL URL for transcription history (empty disables history)")
		languagesDir   = fs_.StringLong("languages-dir", "", "Directory of extra *.yml rule tables")
		allowedOrigins = fs_.StringLong("allowed-origins", "", "Comma-separated list of allowed CORS origins")
		adminAPIKey    = fs_.StringLong("admin-api-key", "", "API key for deleting history (empty disables the route)")
		rateLimit      = fs_.IntLong("rate-limit", 30, "Transcription requests per client per window")
		rateWindow     = fs_.DurationLong("rate-limit-window", time.Minute, "Rate limit window")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.Init()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	langs, err := language.Load(*languagesDir)
	if err != nil {
		return fmt.Errorf("loading languages: %w", err)
	}
	log.InfoContext(ctx, "loaded languages", "codes", langs.Codes())

	var repo db.Repository
	if *databaseURL != "" {
		repo, err = driver.Open(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer repo.Close()
		log.InfoContext(ctx, "connected to history database", "postgres", driver.IsPostgres(*databaseURL))

		if pg, ok := repo.(*postgres.Repository); ok {
			go db.ReportPoolStats(ctx, pg.Pool(), 15*time.Second)
		}
	}

	engine := hangulize.New(hangulize.WithLogger(log))
	svc := transcription.NewService(engine, langs, repo, log)

	var origins []string
	if *allowedOrigins != "" {
		for _, o := range strings.Split(*allowedOrigins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	router := web.NewRouter(svc, log, web.Config{
		AllowedOrigins:  origins,
		AdminAPIKey:     *adminAPIKey,
		RateLimit:       *rateLimit,
		RateLimitWindow: *rateWindow,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           router.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
