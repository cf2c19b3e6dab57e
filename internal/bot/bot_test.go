package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/transcription"
)

type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Info(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Warn(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	m.Called(ctx, msg, args)
}

func (m *MockLogger) Error(msg string, args ...any) {
	m.Called(msg, args)
}

func (m *MockLogger) With(args ...any) Logger {
	ret := m.Called(args)
	return ret.Get(0).(Logger)
}

type MockDiscordSession struct {
	mock.Mock
}

func (m *MockDiscordSession) AddHandler(handler interface{}) func() {
	ret := m.Called(handler)
	return ret.Get(0).(func())
}

func (m *MockDiscordSession) Open() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) Close() error {
	ret := m.Called()
	return ret.Error(0)
}

func (m *MockDiscordSession) ApplicationCommandBulkOverwrite(appID, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	ret := m.Called(appID, guildID, commands, options)
	return ret.Get(0).([]*discordgo.ApplicationCommand), ret.Error(1)
}

func (m *MockDiscordSession) InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error {
	ret := m.Called(interaction, resp, options)
	return ret.Error(0)
}

func (m *MockDiscordSession) GetUserID() string {
	ret := m.Called()
	return ret.String(0)
}

type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) Transcribe(ctx context.Context, req transcription.Request) (transcription.Transcription, error) {
	ret := m.Called(ctx, req)
	return ret.Get(0).(transcription.Transcription), ret.Error(1)
}

func (m *MockTranscriber) Languages() []transcription.LanguageInfo {
	ret := m.Called()
	return ret.Get(0).([]transcription.LanguageInfo)
}

var testLanguages = []transcription.LanguageInfo{
	{Code: "cmn", Name: "Mandarin Chinese"},
	{Code: "ita", Name: "Italian"},
}

func command(name, user string, opts map[string]string) *discordgo.InteractionCreate {
	var options []*discordgo.ApplicationCommandInteractionDataOption
	for _, key := range []string{"language", "text"} {
		if v, ok := opts[key]; ok {
			options = append(options, &discordgo.ApplicationCommandInteractionDataOption{
				Name:  key,
				Type:  discordgo.ApplicationCommandOptionString,
				Value: v,
			})
		}
	}
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		ChannelID: "channel-1",
		Member:    &discordgo.Member{User: &discordgo.User{ID: user}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}}
}

type fixture struct {
	bot     *Bot
	log     *MockLogger
	session *MockDiscordSession
	svc     *MockTranscriber
}

func newFixture(limit int) *fixture {
	f := &fixture{
		log:     new(MockLogger),
		session: new(MockDiscordSession),
		svc:     new(MockTranscriber),
	}
	f.bot = New(f.log, f.session, f.svc, NewRateLimiter(limit, 0), Config{})
	return f
}

// expectResponse captures the response the bot sends.
func (f *fixture) expectResponse() *discordgo.InteractionResponse {
	var got discordgo.InteractionResponse
	f.session.On("InteractionRespond", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			got = *args.Get(1).(*discordgo.InteractionResponse)
		}).
		Return(nil).Once()
	return &got
}

func TestHangulizeCommand(t *testing.T) {
	f := newFixture(5)
	f.svc.On("Transcribe", mock.Anything, transcription.Request{Language: "ita", Text: "Roma"}).
		Return(transcription.Transcription{Language: "ita", Input: "Roma", Output: "로마", Romanized: "roma"}, nil)
	resp := f.expectResponse()

	f.bot.handleCommand(command("hangulize", "u1", map[string]string{"language": "ita", "text": "  Roma "}))

	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.Embeds, 1)
	embed := resp.Data.Embeds[0]
	assert.Equal(t, "로마", embed.Title)
	assert.Equal(t, "Roma", embed.Fields[0].Value)
	assert.Equal(t, "roma", embed.Fields[1].Value)
	assert.Zero(t, resp.Data.Flags)
	f.svc.AssertExpectations(t)
	f.session.AssertExpectations(t)
}

func TestHangulizeCommandUserErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unknown language", fmt.Errorf("%w: %q", language.ErrUnknownLanguage, "xxx"), "Unknown language"},
		{"empty text", transcription.ErrEmptyText, "text is empty"},
		{"too long", transcription.ErrTextTooLong, "longer than"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(5)
			f.svc.On("Transcribe", mock.Anything, mock.Anything).Return(transcription.Transcription{}, tt.err)
			f.log.On("WarnContext", mock.Anything, "user error", mock.Anything).Once()
			resp := f.expectResponse()

			f.bot.handleCommand(command("hangulize", "u1", map[string]string{"language": "xxx", "text": "a"}))

			assert.Contains(t, resp.Data.Content, tt.want)
			assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
			f.log.AssertExpectations(t)
		})
	}
}

func TestHangulizeCommandFailure(t *testing.T) {
	f := newFixture(5)
	f.svc.On("Transcribe", mock.Anything, mock.Anything).Return(transcription.Transcription{}, errors.New("boom"))
	f.log.On("ErrorContext", mock.Anything, "command failed", mock.Anything).Once()
	resp := f.expectResponse()

	f.bot.handleCommand(command("hangulize", "u1", map[string]string{"language": "ita", "text": "Roma"}))

	assert.Contains(t, resp.Data.Content, "Failed to transcribe")
	f.log.AssertExpectations(t)
}

func TestLanguagesCommand(t *testing.T) {
	f := newFixture(5)
	f.svc.On("Languages").Return(testLanguages)
	resp := f.expectResponse()

	f.bot.handleCommand(command("languages", "u1", nil))

	assert.Contains(t, resp.Data.Content, "Italian (`ita`)")
	assert.Contains(t, resp.Data.Content, "Mandarin Chinese (`cmn`)")
}

func TestCommandsAreRateLimited(t *testing.T) {
	f := newFixture(1)
	f.svc.On("Languages").Return(testLanguages)
	f.log.On("WarnContext", mock.Anything, "user error", mock.Anything).Once()

	f.expectResponse()
	f.bot.handleCommand(command("languages", "u1", nil))

	resp := f.expectResponse()
	f.bot.handleCommand(command("languages", "u1", nil))
	assert.Contains(t, resp.Data.Content, "Slow down")

	f.svc.AssertNumberOfCalls(t, "Languages", 1)
	f.log.AssertExpectations(t)
}

func TestRespondFailureIsLogged(t *testing.T) {
	f := newFixture(5)
	f.svc.On("Languages").Return(testLanguages)
	f.session.On("InteractionRespond", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("gone"))
	f.log.On("ErrorContext", mock.Anything, "failed to respond to interaction", mock.Anything).Once()

	f.bot.handleCommand(command("languages", "u1", nil))
	f.log.AssertExpectations(t)
}

func TestIgnoresOtherInteractions(t *testing.T) {
	f := newFixture(5)
	i := command("hangulize", "u1", nil)
	i.Type = discordgo.InteractionMessageComponent

	f.bot.handleInteraction(nil, i)
	f.session.AssertNotCalled(t, "InteractionRespond", mock.Anything, mock.Anything, mock.Anything)
}

func TestBuildCommands(t *testing.T) {
	cmds := buildCommands(testLanguages)
	require.Len(t, cmds, 2)
	assert.Equal(t, "hangulize", cmds[0].Name)

	choices := cmds[0].Options[0].Choices
	require.Len(t, choices, 2)
	assert.Equal(t, "Italian", choices[1].Name)
	assert.Equal(t, "ita", choices[1].Value)

	many := make([]transcription.LanguageInfo, 40)
	for i := range many {
		many[i] = transcription.LanguageInfo{Code: fmt.Sprintf("l%02d", i)}
	}
	assert.Len(t, buildCommands(many)[0].Options[0].Choices, maxChoices)
}

func TestRunRegistersCommands(t *testing.T) {
	f := newFixture(5)
	f.bot.log = NewLogger(slog.New(slog.DiscardHandler))
	f.session.On("AddHandler", mock.Anything).Return(func() {})
	f.session.On("Open").Return(nil)
	f.session.On("Close").Return(nil)
	f.session.On("GetUserID").Return("app-1")
	f.svc.On("Languages").Return(testLanguages)
	f.session.On("ApplicationCommandBulkOverwrite", "app-1", "", mock.Anything, mock.Anything).
		Return([]*discordgo.ApplicationCommand{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, f.bot.Run(ctx))
	f.session.AssertExpectations(t)
}

func TestRunOpenFailure(t *testing.T) {
	f := newFixture(5)
	f.session.On("AddHandler", mock.Anything).Return(func() {})
	f.session.On("Open").Return(errors.New("bad token"))

	err := f.bot.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad token")
	f.session.AssertNotCalled(t, "Close")
}
