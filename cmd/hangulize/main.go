package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/jusunglee/hangulize/internal/db"
	"github.com/jusunglee/hangulize/internal/db/driver"
	"github.com/jusunglee/hangulize/internal/hangulize"
	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/logger"
	"github.com/jusunglee/hangulize/internal/repl"
	"github.com/jusunglee/hangulize/internal/transcription"
)

func main() {
	if err := mainE(); err != nil {
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

type options struct {
	lang        string
	trace       bool
	romanize    bool
	interactive bool
	list        bool
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("hangulize")
	var (
		lang         = fs.String('l', "lang", "", "Language code of the input (see --list)")
		trace        = fs.BoolLong("trace", "Print every rule that changed the text")
		romanize     = fs.BoolLong("romanize", "Also print the output in Revised Romanization")
		interactive  = fs.Bool('i', "interactive", "Start the interactive prompt")
		list         = fs.BoolLong("list", "List the available languages and exit")
		languagesDir = fs.StringLong("languages-dir", "", "Directory of extra *.yml rule tables")
		databaseURL  = fs.StringLong("database-url", "", "Record transcriptions in this SQLite file or PostgreSQL URL")
		logLevel     = fs.StringLong("log-level", "warn", "Log level (debug shows rule applications)")
		logFormat    = fs.StringEnumLong("log-format", "Log output format", "pretty", "json")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New(os.Stderr, *logFormat, *logLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	langs, err := language.Load(*languagesDir)
	if err != nil {
		return fmt.Errorf("loading languages: %w", err)
	}

	var repo db.Repository
	if *databaseURL != "" {
		repo, err = driver.Open(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer repo.Close()
	}

	svc := transcription.NewService(hangulize.New(hangulize.WithLogger(log)), langs, repo, log)
	opts := options{lang: *lang, trace: *trace, romanize: *romanize, interactive: *interactive, list: *list}
	return run(ctx, svc, opts, fs.GetArgs(), os.Stdin, os.Stdout)
}

func run(ctx context.Context, svc *transcription.Service, opts options, args []string, in io.Reader, out io.Writer) error {
	switch {
	case opts.list:
		return printLanguages(svc, out)
	case opts.interactive:
		return repl.Run(ctx, svc, opts.lang, in, out)
	case opts.lang == "":
		return errors.New("lang is required (see --list)")
	case len(args) > 0:
		return transcribe(ctx, svc, opts, strings.Join(args, " "), out)
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprintln(out)
			continue
		}
		if err := transcribe(ctx, svc, opts, line, out); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func transcribe(ctx context.Context, svc *transcription.Service, opts options, text string, out io.Writer) error {
	res, err := svc.Transcribe(ctx, transcription.Request{Language: opts.lang, Text: text, Trace: opts.trace})
	if err != nil {
		return err
	}
	if opts.romanize {
		fmt.Fprintf(out, "%s\t%s\n", res.Output, res.Romanized)
	} else {
		fmt.Fprintln(out, res.Output)
	}
	if opts.trace {
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, st := range res.Trace {
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", st.Pattern, st.Action, st.Result)
		}
		tw.Flush()
	}
	return nil
}

func printLanguages(svc *transcription.Service, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, l := range svc.Languages() {
		fmt.Fprintf(tw, "%s\t%s\n", l.Code, l.Name)
	}
	return tw.Flush()
}
