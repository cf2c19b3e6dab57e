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

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/jusunglee/hangulize/internal/bot"
	"github.com/jusunglee/hangulize/internal/db"
	"github.com/jusunglee/hangulize/internal/db/driver"
	"github.com/jusunglee/hangulize/internal/envsetup"
	"github.com/jusunglee/hangulize/internal/hangulize"
	"github.com/jusunglee/hangulize/internal/health"
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
	if envsetup.NeedsSetup(".env") && os.Getenv("DISCORD_TOKEN") == "" && len(os.Args) == 1 {
		ok, err := envsetup.Run(".env")
		if err != nil {
			return fmt.Errorf("running setup wizard: %w", err)
		}
		if !ok {
			return errors.New("setup cancelled")
		}
	}
	_ = godotenv.Load()

	fs := ff.NewFlagSet("hangulize-bot")
	var (
		discordToken = fs.StringLong("discord-token", "", "Discord bot token")
		guildID      = fs.StringLong("discord-guild-id", "", "Register commands to this guild only (instant updates)")
		databaseURL  = fs.StringLong("database-url", "", "SQLite file or PostgreSQL URL for transcription history (empty disables history)")
		languagesDir = fs.StringLong("languages-dir", "", "Directory of extra *.yml rule tables")
		rateLimit    = fs.IntLong("rate-limit", 5, "Commands per user per window")
		rateWindow   = fs.DurationLong("rate-limit-window", time.Minute, "Rate limit window")
		healthPort   = fs.IntLong("health-port", 9091, "Port for /health and /metrics")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *discordToken == "" {
		return errors.New("discord-token is required")
	}

	log := logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	langs, err := language.Load(*languagesDir)
	if err != nil {
		return fmt.Errorf("loading languages: %w", err)
	}

	checks := map[string]health.Check{}
	var repo db.Repository
	if *databaseURL != "" {
		repo, err = driver.Open(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer repo.Close()
		checks["database"] = repo.Ping
	}

	svc := transcription.NewService(hangulize.New(hangulize.WithLogger(log)), langs, repo, log)

	session, err := discordgo.New("Bot " + *discordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}

	healthServer := health.New(*healthPort, checks)
	go func() {
		if err := healthServer.Start(); err != nil {
			log.ErrorContext(ctx, "health server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		healthServer.Shutdown(shutdownCtx)
	}()

	b := bot.New(
		bot.NewLogger(log),
		bot.NewDiscordSession(session),
		svc,
		bot.NewRateLimiter(*rateLimit, *rateWindow),
		bot.Config{GuildID: *guildID},
	)
	if err := b.Run(ctx); err != nil {
		return err
	}
	log.Info("shut down complete")
	return nil
}
