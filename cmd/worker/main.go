package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/jusunglee/hangulize/internal/db"
	"github.com/jusunglee/hangulize/internal/db/driver"
	"github.com/jusunglee/hangulize/internal/db/postgres"
	"github.com/jusunglee/hangulize/internal/hangulize"
	"github.com/jusunglee/hangulize/internal/health"
	"github.com/jusunglee/hangulize/internal/jobs"
	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/logger"
	"github.com/jusunglee/hangulize/internal/transcription"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("hangulize-worker")
	var (
		databaseURL = fs.StringLong("database-url", "", "SQLite file or PostgreSQL URL of the history database")
		interval    = fs.DurationLong("interval", 1*time.Hour, "Retention sweep interval")
		maxAge      = fs.DurationLong("max-age", 30*24*time.Hour, "Delete transcriptions not requested for this long")
		healthPort  = fs.IntLong("health-port", 9090, "Port for /health and /metrics")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *databaseURL == "" {
		return errors.New("database-url is required")
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	log := logger.Init()

	repo, err := driver.Open(ctx, *databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer repo.Close()

	if pg, ok := repo.(*postgres.Repository); ok {
		go db.ReportPoolStats(ctx, pg.Pool(), 15*time.Second)
	}

	langs, err := language.Default()
	if err != nil {
		return fmt.Errorf("loading languages: %w", err)
	}
	svc := transcription.NewService(hangulize.New(), langs, repo, log)

	healthServer := health.New(*healthPort, map[string]health.Check{"database": repo.Ping})
	go func() {
		log.InfoContext(ctx, "starting health server", "port", *healthPort)
		if err := healthServer.Start(); err != nil {
			log.ErrorContext(ctx, "health server error", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))
	}()

	log.InfoContext(ctx, "worker starting", "interval", *interval, "max_age", *maxAge)
	jobs.NewRetention(svc, *maxAge, log).Run(ctx, *interval)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown error", "error", err)
	}
	log.Info("worker stopped")
	return nil
}
