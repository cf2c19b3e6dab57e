// envsetup provides a lightweight .env configuration wizard.
// It runs on first bot startup when neither a .env file nor a Discord
// token is present.
package envsetup

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultDatabaseURL = "./hangulize.db"

type step int

const (
	stepWelcome step = iota
	stepDiscord
	stepDatabase
	stepConfirm
	stepDone
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Underline(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	path         string
	step         step
	discordToken string
	databaseURL  string
	input        string
	err          error
}

func newModel(path string) model {
	return model{path: path, step: stepWelcome}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.handleEnter()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.input += string(key.Runes)
	case tea.KeySpace:
		m.input += " "
	}
	return m, nil
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	m.err = nil
	value := strings.TrimSpace(m.input)

	switch m.step {
	case stepWelcome:
		m.step = stepDiscord

	case stepDiscord:
		if value == "" {
			m.err = errors.New("Discord token is required")
			return m, nil
		}
		m.discordToken = value
		m.step = stepDatabase

	case stepDatabase:
		if value == "" {
			value = defaultDatabaseURL
		}
		m.databaseURL = value
		m.step = stepConfirm

	case stepConfirm:
		switch strings.ToLower(value) {
		case "", "y", "yes":
			if err := m.writeEnvFile(); err != nil {
				m.err = err
				return m, nil
			}
			m.step = stepDone
			return m, tea.Quit
		case "n", "no":
			m = newModel(m.path)
			return m, nil
		default:
			m.err = errors.New("Please answer y or n")
			return m, nil
		}
	}

	m.input = ""
	return m, nil
}

func (m model) writeEnvFile() error {
	content := fmt.Sprintf(`DISCORD_TOKEN=%s
DATABASE_URL=%s
LOG_LEVEL=info
`, m.discordToken, m.databaseURL)

	return os.WriteFile(m.path, []byte(content), 0600)
}

func (m model) View() string {
	var s strings.Builder

	switch m.step {
	case stepWelcome:
		s.WriteString(titleStyle.Render("hangulize - Bot Setup"))
		s.WriteString("\n\n")
		s.WriteString("This wizard writes a .env file for the Discord bot.\n")
		s.WriteString("You'll need a Discord bot token.\n\n")
		s.WriteString(dimStyle.Render("Press Enter to continue, Ctrl+C to exit"))

	case stepDiscord:
		s.WriteString(titleStyle.Render("Step 1: Discord Bot Token"))
		s.WriteString("\n\n")
		s.WriteString("  1. Go to " + linkStyle.Render("https://discord.com/developers/applications") + "\n")
		s.WriteString("  2. Create a new application (or select existing)\n")
		s.WriteString("  3. Open the Bot section and click 'Reset Token'\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Paste your Discord token here:"))
		s.WriteString("\n> " + inputStyle.Render(maskToken(m.input)))

	case stepDatabase:
		s.WriteString(titleStyle.Render("Step 2: History Database"))
		s.WriteString("\n\n")
		s.WriteString("Transcriptions are recorded in a SQLite file or a PostgreSQL database.\n\n")
		s.WriteString(labelStyle.Render("Database path or URL [" + defaultDatabaseURL + "]:"))
		s.WriteString("\n> " + inputStyle.Render(m.input))

	case stepConfirm:
		s.WriteString(titleStyle.Render("Configuration Complete"))
		s.WriteString("\n\n")
		s.WriteString("  Discord:  " + successStyle.Render(maskToken(m.discordToken)) + "\n")
		s.WriteString("  Database: " + successStyle.Render(m.databaseURL) + "\n")
		s.WriteString("\n")
		s.WriteString(labelStyle.Render("Save this configuration? [Y/n]:"))
		s.WriteString("\n> " + inputStyle.Render(m.input))

	case stepDone:
		s.WriteString(successStyle.Render("Saved " + m.path))
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()))
	}
	s.WriteString("\n")
	return s.String()
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// Run starts the setup wizard and reports whether path was written.
func Run(path string) (bool, error) {
	finalModel, err := tea.NewProgram(newModel(path)).Run()
	if err != nil {
		return false, err
	}
	m := finalModel.(model)
	return m.step == stepDone, nil
}

// NeedsSetup reports whether path does not exist yet.
func NeedsSetup(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, os.ErrNotExist)
}
