package terminal

import "github.com/charmbracelet/lipgloss"

// Palette for the report screen.
var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#570DF8", Dark: "#A78BFA"}
	colorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
)

// Styles groups every style the renderer uses.
type Styles struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	StatValue lipgloss.Style
	Card      lipgloss.Style
	CardTitle lipgloss.Style
	Bar       lipgloss.Style
}

// NewStyles builds the styles against a renderer so color detection follows
// the output stream.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Foreground(colorPrimary).
			Bold(true),
		Label: r.NewStyle().Bold(true),
		Muted: r.NewStyle().Foreground(colorMuted),
		Error: r.NewStyle().
			Foreground(colorError).
			Bold(true),
		Tab: r.NewStyle().
			Foreground(colorMuted).
			Padding(0, 1),
		ActiveTab: r.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			Underline(true).
			Padding(0, 1),
		StatValue: r.NewStyle().Bold(true),
		Card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1),
		CardTitle: r.NewStyle().
			Foreground(colorPrimary).
			Bold(true),
		Bar: r.NewStyle().Foreground(colorPrimary),
	}
}
