package color

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Primary = lipgloss.AdaptiveColor{Light: "#1F5FAD", Dark: "#7AB8FF"}
	Success = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#81C784"}
	Warning = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFB74D"}
	Muted   = lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#9E9E9E"}
)

var (
	SectionStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	LabelStyle   = lipgloss.NewStyle().Foreground(Primary)
	SuccessStyle = lipgloss.NewStyle().Foreground(Success).Bold(true)
	WarnStyle    = lipgloss.NewStyle().Foreground(Warning)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)
)

// Initialize fixes the background assumption instead of relying on terminal
// detection, which blocks on some terminals.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// Banner frames a section title the way every walk step is announced.
func Banner(title string) string {
	bar := strings.Repeat("=", 10)
	return bar + " " + title + " " + bar + "="
}
