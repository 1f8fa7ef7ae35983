package tui

import "github.com/charmbracelet/lipgloss"

// Colors for the timeline view.
var (
	colText    = lipgloss.Color("#F9FAFB")
	colMuted   = lipgloss.Color("#9CA3AF")
	colDim     = lipgloss.Color("#6B7280")
	colAccent  = lipgloss.Color("#F59E0B")
	colPlaying = lipgloss.Color("#10B981")
	colError   = lipgloss.Color("#EF4444")
	colLane    = lipgloss.Color("#374151")

	colVideo      = lipgloss.Color("#7C3AED")
	colAudio      = lipgloss.Color("#10B981")
	colImage      = lipgloss.Color("#3B82F6")
	colTextClip   = lipgloss.Color("#F59E0B")
	colCaption    = lipgloss.Color("#D97706")
	colEffect     = lipgloss.Color("#EC4899")
	colTransition = lipgloss.Color("#8B5CF6")
	colUnknown    = lipgloss.Color("#4B5563")
)

// fillStyles maps canvas fill tokens onto terminal styles. The canvas
// stays renderer-agnostic; this table is the only place its tokens meet
// lipgloss.
var fillStyles = map[string]lipgloss.Style{
	"clip.video":      lipgloss.NewStyle().Background(colVideo).Foreground(colText),
	"clip.audio":      lipgloss.NewStyle().Background(colAudio).Foreground(colText),
	"clip.image":      lipgloss.NewStyle().Background(colImage).Foreground(colText),
	"clip.text":       lipgloss.NewStyle().Background(colTextClip).Foreground(colText),
	"clip.caption":    lipgloss.NewStyle().Background(colCaption).Foreground(colText),
	"clip.effect":     lipgloss.NewStyle().Background(colEffect).Foreground(colText),
	"clip.transition": lipgloss.NewStyle().Background(colTransition).Foreground(colText),
	"clip.unknown":    lipgloss.NewStyle().Background(colUnknown).Foreground(colText),
}

func fillStyle(token string) lipgloss.Style {
	if s, ok := fillStyles[token]; ok {
		return s
	}
	return fillStyles["clip.unknown"]
}

// Text styles.
var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colText)
	styleMuted    = lipgloss.NewStyle().Foreground(colMuted)
	styleDim      = lipgloss.NewStyle().Foreground(colDim)
	styleAccent   = lipgloss.NewStyle().Foreground(colAccent)
	stylePlaying  = lipgloss.NewStyle().Foreground(colPlaying)
	styleError    = lipgloss.NewStyle().Foreground(colError)
	styleLane     = lipgloss.NewStyle().Foreground(colLane)
	styleLaneName = lipgloss.NewStyle().Foreground(colMuted).Width(laneLabelCols).MaxWidth(laneLabelCols)
	styleHelpBox  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colLane).Padding(1, 2)
)

// statusIcon renders the transport state.
func statusIcon(playing bool) string {
	if playing {
		return stylePlaying.Render("▶")
	}
	return styleAccent.Render("⏸")
}
