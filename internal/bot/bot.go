// Package bot serves transcriptions over Discord slash commands.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/samber/lo"

	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/metrics"
	"github.com/jusunglee/hangulize/internal/transcription"
)

// Discord allows at most this many choices per option.
const maxChoices = 25

type Config struct {
	GuildID        string
	CommandTimeout time.Duration
	SweepInterval  time.Duration
}

type Bot struct {
	log     Logger
	session DiscordSession
	svc     Transcriber
	limiter *RateLimiter
	config  Config
}

func New(log Logger, session DiscordSession, svc Transcriber, limiter *RateLimiter, config Config) *Bot {
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = 10 * time.Second
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = 5 * time.Minute
	}
	return &Bot{
		log:     log,
		session: session,
		svc:     svc,
		limiter: limiter,
		config:  config,
	}
}

// Run connects, registers commands and serves until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.log.InfoContext(ctx, "connected to Discord", "username", r.User.Username, "discriminator", r.User.Discriminator)
	})

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening Discord connection: %w", err)
	}
	defer b.session.Close()

	if err := b.registerCommands(ctx); err != nil {
		return fmt.Errorf("registering commands: %w", err)
	}

	b.log.InfoContext(ctx, "bot is running, press Ctrl+C to stop")

	ticker := time.NewTicker(b.config.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			b.log.Info("shutdown signal received")
			return nil
		case <-ticker.C:
			if n := b.limiter.Sweep(); n > 0 {
				b.log.InfoContext(ctx, "swept rate limiter", "users", n)
			}
		}
	}
}

func (b *Bot) registerCommands(ctx context.Context) error {
	guildID := b.config.GuildID
	if guildID != "" {
		b.log.InfoContext(ctx, "registering commands to guild", "guild_id", guildID)
	} else {
		b.log.InfoContext(ctx, "registering commands globally (may take up to 1 hour to propagate)")
	}

	commands := buildCommands(b.svc.Languages())
	_, err := b.session.ApplicationCommandBulkOverwrite(b.session.GetUserID(), guildID, commands)
	if err != nil {
		return fmt.Errorf("bulk overwrite commands: %w", err)
	}
	b.log.InfoContext(ctx, "registered commands", "count", len(commands))
	return nil
}

func buildCommands(langs []transcription.LanguageInfo) []*discordgo.ApplicationCommand {
	choices := lo.Map(lo.Slice(langs, 0, maxChoices), func(l transcription.LanguageInfo, _ int) *discordgo.ApplicationCommandOptionChoice {
		return &discordgo.ApplicationCommandOptionChoice{Name: l.Name, Value: l.Code}
	})
	return []*discordgo.ApplicationCommand{
		{
			Name:        "hangulize",
			Description: "Write a foreign word or name in Hangul",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "language",
					Description: "Language of the text",
					Required:    true,
					Choices:     choices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "Text to transcribe",
					Required:    true,
					MaxLength:   transcription.MaxTextLength,
				},
			},
		},
		{
			Name:        "languages",
			Description: "List the supported languages",
		},
	}
}

type handlerResult struct {
	Content string
	Embed   *discordgo.MessageEmbed
	// Ephemeral responses are shown only to the caller.
	Ephemeral bool
	Err       error
}

func (b *Bot) handleInteraction(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.handleCommand(i)
}

func (b *Bot) handleCommand(i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.config.CommandTimeout)
	defer cancel()

	cmd := i.ApplicationCommandData().Name
	var result handlerResult

	switch {
	case !b.limiter.Allow(interactionUserID(i)):
		result = handlerResult{
			Content:   "⏳ Slow down! Try again in a minute.",
			Ephemeral: true,
			Err:       newUserError(errors.New("rate limited")),
		}
	case cmd == "hangulize":
		result = b.handleHangulize(ctx, i)
	case cmd == "languages":
		result = b.handleLanguages()
	default:
		result = handlerResult{Content: "Unknown command", Ephemeral: true, Err: newUserError(fmt.Errorf("unknown command %q", cmd))}
	}

	b.respond(ctx, i, result)

	status := "ok"
	if result.Err != nil {
		status = "error"
		if _, ok := errors.AsType[*userError](result.Err); ok {
			status = "rejected"
			b.log.WarnContext(ctx, "user error", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
		} else {
			b.log.ErrorContext(ctx, "command failed", "command", cmd, "error", result.Err, "channel_id", i.ChannelID)
		}
	}
	metrics.BotCommandsTotal.WithLabelValues(cmd, status).Inc()
}

type userError struct {
	Err error
}

func (e *userError) Error() string {
	return e.Err.Error()
}

func (e *userError) Unwrap() error {
	return e.Err
}

func newUserError(err error) *userError {
	return &userError{Err: err}
}

func getOption(options []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range options {
		if opt.Name == name {
			return opt.StringValue()
		}
	}
	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) handleHangulize(ctx context.Context, i *discordgo.InteractionCreate) handlerResult {
	options := i.ApplicationCommandData().Options
	code := getOption(options, "language")
	text := strings.TrimSpace(getOption(options, "text"))

	out, err := b.svc.Transcribe(ctx, transcription.Request{Language: code, Text: text})
	switch {
	case errors.Is(err, language.ErrUnknownLanguage):
		return handlerResult{
			Content:   fmt.Sprintf("❌ Unknown language: %s. Use `/languages` to see the list.", code),
			Ephemeral: true,
			Err:       newUserError(err),
		}
	case errors.Is(err, transcription.ErrEmptyText), errors.Is(err, transcription.ErrTextTooLong):
		return handlerResult{
			Content:   fmt.Sprintf("❌ %s", err),
			Ephemeral: true,
			Err:       newUserError(err),
		}
	case err != nil:
		return handlerResult{
			Content:   "❌ Failed to transcribe. Please try again later.",
			Ephemeral: true,
			Err:       fmt.Errorf("transcribe %q in %s: %w", text, code, err),
		}
	}

	return handlerResult{Embed: formatTranscriptionEmbed(out)}
}

func (b *Bot) handleLanguages() handlerResult {
	langs := b.svc.Languages()
	if len(langs) == 0 {
		return handlerResult{Content: "No languages are loaded.", Ephemeral: true}
	}

	var sb strings.Builder
	sb.WriteString("**Supported languages:**\n")
	for _, l := range langs {
		fmt.Fprintf(&sb, "• %s (`%s`)\n", l.Name, l.Code)
	}
	return handlerResult{Content: sb.String(), Ephemeral: true}
}

func (b *Bot) respond(ctx context.Context, i *discordgo.InteractionCreate, result handlerResult) {
	data := &discordgo.InteractionResponseData{Content: result.Content}
	if result.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{result.Embed}
	}
	if result.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to respond to interaction", "error", err)
	}
}

func formatTranscriptionEmbed(t transcription.Transcription) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: t.Output,
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Original", Value: t.Input, Inline: true},
			{Name: "Romanized", Value: t.Romanized, Inline: true},
			{Name: "Language", Value: t.Language, Inline: true},
		},
	}
}
