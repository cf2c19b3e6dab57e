// Package repl is the interactive terminal front end of the CLI.
package repl

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/transcription"
)

const historySize = 8

// Transcriber is the part of transcription.Service the REPL uses.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (transcription.Transcription, error)
	Languages() []transcription.LanguageInfo
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	langStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type resultMsg struct {
	result transcription.Transcription
	err    error
}

type model struct {
	ctx       context.Context
	svc       Transcriber
	langs     []transcription.LanguageInfo
	lang      int
	input     textinput.Model
	showTrace bool
	last      *transcription.Transcription
	history   []transcription.Transcription
	err       error
	width     int
}

func newModel(ctx context.Context, svc Transcriber, code string) (model, error) {
	langs := svc.Languages()
	if len(langs) == 0 {
		return model{}, fmt.Errorf("%w: no languages loaded", language.ErrUnknownLanguage)
	}
	idx := 0
	if code != "" {
		idx = slices.IndexFunc(langs, func(l transcription.LanguageInfo) bool { return l.Code == code })
		if idx < 0 {
			return model{}, fmt.Errorf("%w: %q", language.ErrUnknownLanguage, code)
		}
	}

	ti := textinput.New()
	ti.Placeholder = "type a word or a name"
	ti.CharLimit = transcription.MaxTextLength
	ti.Prompt = "> "
	ti.Focus()

	return model{ctx: ctx, svc: svc, langs: langs, lang: idx, input: ti}, nil
}

// Run starts the REPL and blocks until the user quits or ctx is done.
func Run(ctx context.Context, svc Transcriber, code string, in io.Reader, out io.Writer) error {
	m, err := newModel(ctx, svc, code)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)).Run()
	return err
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case resultMsg:
		m.err = msg.err
		if msg.err == nil {
			m.last = &msg.result
			m.history = append([]transcription.Transcription{msg.result}, m.history...)
			if len(m.history) > historySize {
				m.history = m.history[:historySize]
			}
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.lang = (m.lang + 1) % len(m.langs)
			return m, nil
		case tea.KeyShiftTab:
			m.lang = (m.lang + len(m.langs) - 1) % len(m.langs)
			return m, nil
		case tea.KeyCtrlT:
			m.showTrace = !m.showTrace
			return m, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			return m, m.transcribe(text)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) transcribe(text string) tea.Cmd {
	req := transcription.Request{Language: m.langs[m.lang].Code, Text: text, Trace: true}
	return func() tea.Msg {
		res, err := m.svc.Transcribe(m.ctx, req)
		return resultMsg{result: res, err: err}
	}
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("hangulize"))
	s.WriteString("  ")
	s.WriteString(langStyle.Render(m.langs[m.lang].Name))
	s.WriteString(subtleStyle.Render(" (" + m.langs[m.lang].Code + ")"))
	s.WriteString("\n\n")
	s.WriteString(m.input.View())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()))
		s.WriteString("\n\n")
	}

	if m.last != nil {
		var box strings.Builder
		box.WriteString(m.last.Input + "  →  " + outputStyle.Render(m.last.Output) + "\n")
		box.WriteString(subtleStyle.Render(m.last.Romanized + "  [" + strings.Join(m.last.Phonemes, " ") + "]"))
		if m.showTrace {
			for _, st := range m.last.Trace {
				box.WriteString("\n")
				box.WriteString(fmt.Sprintf("%-24s %-20s %s", st.Pattern, st.Action, st.Result))
			}
		}
		s.WriteString(boxStyle.Render(box.String()))
		s.WriteString("\n\n")
	}

	if len(m.history) > 1 {
		for _, h := range m.history[1:] {
			s.WriteString(subtleStyle.Render(fmt.Sprintf("  %s (%s) → %s", h.Input, h.Language, h.Output)))
			s.WriteString("\n")
		}
		s.WriteString("\n")
	}

	s.WriteString(subtleStyle.Render("enter: transcribe • tab: language • ctrl+t: trace • esc: quit"))
	return s.String()
}
