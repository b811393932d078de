package tui

import "github.com/charmbracelet/lipgloss"

// Colors are ANSI 256 codes so the display degrades on limited terminals.
const (
	colorDim    = lipgloss.Color("240")
	colorText   = lipgloss.Color("252")
	colorMuted  = lipgloss.Color("244")
	colorGood   = lipgloss.Color("42")
	colorBad    = lipgloss.Color("203")
	colorWarn   = lipgloss.Color("214")
	colorActive = lipgloss.Color("75")
)

var (
	taskNameStyle = lipgloss.NewStyle().Foreground(colorText)
	taskDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	messageStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorBad)
	warnStyle     = lipgloss.NewStyle().Foreground(colorWarn)
	spinnerStyle  = lipgloss.NewStyle().Foreground(colorActive)
	footerStyle   = lipgloss.NewStyle().Foreground(colorDim).MarginTop(1)
)

// statusGlyphs holds the rendered icon of every final or idle status.
// Running tasks show the spinner instead. Skipped means ranked without
// publishing.
var statusGlyphs = map[TaskStatus]string{
	StatusPending:  taskDimStyle.Render("·"),
	StatusComplete: lipgloss.NewStyle().Foreground(colorGood).Render("✓"),
	StatusError:    errorStyle.Render("✗"),
	StatusSkipped:  lipgloss.NewStyle().Foreground(colorActive).Render("≡"),
}

// StatusIcon returns the icon for status, using spinnerFrame while running.
func StatusIcon(status TaskStatus, spinnerFrame string) string {
	if status == StatusRunning {
		return spinnerStyle.Render(spinnerFrame)
	}
	if glyph, ok := statusGlyphs[status]; ok {
		return glyph
	}
	return statusGlyphs[StatusPending]
}
