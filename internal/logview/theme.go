package logview

import "github.com/charmbracelet/lipgloss"

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorBlue     lipgloss.Color = "#89b4fa"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorOverlay0 lipgloss.Color = "#6c7086"
	colorSurface1 lipgloss.Color = "#45475a"
)

// ---------------------------------------------------------------------------
// Semantic styles
// ---------------------------------------------------------------------------

// Style is a closed set of semantic presentation tags. Engine state carries
// Style values only; they are turned into lipgloss styles at the render
// boundary and nowhere else.
type Style int

const (
	// StyleNone means "no opinion": renderers pick their contextual default.
	StyleNone Style = iota
	StyleMuted
	StyleInfo
	StyleNote
	StyleSuccess
	StyleWarning
	StyleError
	StylePlain
	StyleHighlight
)

func (s Style) String() string {
	switch s {
	case StyleMuted:
		return "muted"
	case StyleInfo:
		return "info"
	case StyleNote:
		return "note"
	case StyleSuccess:
		return "success"
	case StyleWarning:
		return "warning"
	case StyleError:
		return "error"
	case StylePlain:
		return "plain"
	case StyleHighlight:
		return "highlight"
	default:
		return "none"
	}
}

var (
	mutedStyle     = lipgloss.NewStyle().Foreground(colorOverlay1)
	infoStyle      = lipgloss.NewStyle().Foreground(colorBlue).Bold(true)
	noteStyle      = lipgloss.NewStyle().Foreground(colorTeal).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	warnStyle      = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	plainStyle     = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(colorMauve).Bold(true)
)

// lip resolves a semantic style, falling back to def for StyleNone.
func (s Style) lip(def lipgloss.Style) lipgloss.Style {
	switch s {
	case StyleMuted:
		return mutedStyle
	case StyleInfo:
		return infoStyle
	case StyleNote:
		return noteStyle
	case StyleSuccess:
		return successStyle
	case StyleWarning:
		return warnStyle
	case StyleError:
		return errorStyle
	case StylePlain:
		return plainStyle
	case StyleHighlight:
		return highlightStyle
	default:
		return def
	}
}

// ---------------------------------------------------------------------------
// Fixed render-boundary styles
// ---------------------------------------------------------------------------

var (
	tsStyle      = lipgloss.NewStyle().Foreground(colorOverlay1)
	keyStyle     = lipgloss.NewStyle().Foreground(colorYellow)
	valueStyle   = lipgloss.NewStyle().Foreground(colorBlue)
	detailStyle  = lipgloss.NewStyle().Foreground(colorSubtext0)
	suffixStyle  = lipgloss.NewStyle().Foreground(colorOverlay1)
	dividerStyle = lipgloss.NewStyle().Foreground(colorSurface1)

	stageHeaderStyle = lipgloss.NewStyle().Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorOverlay0).
			Padding(0, 1)

	badgeLowStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	badgeMidStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	badgeHighStyle = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
)
