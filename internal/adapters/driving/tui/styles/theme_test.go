package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.NotEmpty(t, string(theme.Accent))
	assert.NotEmpty(t, string(theme.Answer))
	assert.NotEmpty(t, string(theme.Foreground))
	assert.NotEmpty(t, string(theme.Muted))
	assert.NotEmpty(t, string(theme.Error))
	assert.NotEmpty(t, string(theme.Border))
	assert.NotEmpty(t, string(theme.Bar))
}

func TestDefaultTheme_RolesAreDistinguishable(t *testing.T) {
	theme := DefaultTheme()

	assert.NotEqual(t, theme.Accent, theme.Answer)
	assert.NotEqual(t, theme.Error, theme.Warning)
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.NotNil(t, s.Theme())
}

func TestNewStyles_KeepsTheme(t *testing.T) {
	theme := DefaultTheme()
	s := NewStyles(theme)

	assert.Same(t, theme, s.Theme())
}

func TestStyles_AllStylesInitialised(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":          s.Title,
		"Subtitle":       s.Subtitle,
		"Normal":         s.Normal,
		"Muted":          s.Muted,
		"Error":          s.Error,
		"UserLabel":      s.UserLabel,
		"AssistantLabel": s.AssistantLabel,
		"Source":         s.Source,
		"Selected":       s.Selected,
		"InputField":     s.InputField,
		"StatusBar":      s.StatusBar,
		"Border":         s.Border,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
	}
}

func TestStyles_RenderKeepsText(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.UserLabel.Render("You"), "You")
	assert.Contains(t, s.Source.Render("report.pdf"), "report.pdf")
}
