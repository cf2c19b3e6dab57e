package envsetup

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m model, input string) model {
	t.Helper()
	if input != "" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(input)})
		m = next.(model)
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model)
}

func TestWizardWritesEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.True(t, NeedsSetup(path))

	m := newModel(path)
	m = press(t, m, "")
	m = press(t, m, "abcd1234efgh")
	m = press(t, m, "")
	assert.Equal(t, defaultDatabaseURL, m.databaseURL)
	assert.Contains(t, m.View(), "abcd****efgh")

	m = press(t, m, "y")
	require.NoError(t, m.err)
	assert.Equal(t, stepDone, m.step)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DISCORD_TOKEN=abcd1234efgh\nDATABASE_URL=./hangulize.db\nLOG_LEVEL=info\n", string(data))
	assert.False(t, NeedsSetup(path))
}

func TestWizardRequiresToken(t *testing.T) {
	m := press(t, newModel(filepath.Join(t.TempDir(), ".env")), "")
	m = press(t, m, "   ")
	assert.Equal(t, stepDiscord, m.step)
	assert.EqualError(t, m.err, "Discord token is required")
}

func TestWizardRestartsOnNo(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	m := newModel(path)
	m = press(t, m, "")
	m = press(t, m, "token")
	m = press(t, m, "postgres://localhost/hangulize")
	assert.Equal(t, "postgres://localhost/hangulize", m.databaseURL)

	m = press(t, m, "n")
	assert.Equal(t, stepWelcome, m.step)
	assert.Empty(t, m.discordToken)
	assert.True(t, NeedsSetup(path))
}

func TestBackspaceIsRuneAware(t *testing.T) {
	m := newModel("")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("한글")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "한", next.(model).input)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "****", maskToken("abcd"))
	assert.Equal(t, "abcd****wxyz", maskToken("abcd1234wxyz"))
}
