package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Palette is a full set of UI colors.
type Palette struct {
	Primary      color.Color
	Secondary    color.Color
	Accent       color.Color
	Success      color.Color
	Error        color.Color
	Text         color.Color
	TextDim      color.Color
	BgDark       color.Color
	BgCard       color.Color
	Border       color.Color
	ArcadeYellow color.Color
	ArcadeCyan   color.Color

	// Heat holds the heatmap colors for levels 0 through 4.
	Heat [5]color.Color
}

// DarkPalette is used on dark terminal backgrounds.
var DarkPalette = Palette{
	Primary:      lipgloss.Color("#8B5CF6"), // Vivid Purple
	Secondary:    lipgloss.Color("#14B8A6"), // Teal
	Accent:       lipgloss.Color("#F97316"), // Orange
	Success:      lipgloss.Color("#22C55E"), // Green
	Error:        lipgloss.Color("#F43F5E"), // Rose
	Text:         lipgloss.Color("#F8FAFC"), // White
	TextDim:      lipgloss.Color("#94A3B8"), // Slate
	BgDark:       lipgloss.Color("#0F172A"), // Deep Navy
	BgCard:       lipgloss.Color("#1E293B"), // Dark Slate
	Border:       lipgloss.Color("#334155"), // Slate
	ArcadeYellow: lipgloss.Color("#FACC15"),
	ArcadeCyan:   lipgloss.Color("#22D3EE"),
	Heat: [5]color.Color{
		lipgloss.Color("#1E293B"),
		lipgloss.Color("#0E4429"),
		lipgloss.Color("#006D32"),
		lipgloss.Color("#26A641"),
		lipgloss.Color("#39D353"),
	},
}

// LightPalette is used on light terminal backgrounds.
var LightPalette = Palette{
	Primary:      lipgloss.Color("#6D28D9"),
	Secondary:    lipgloss.Color("#0F766E"),
	Accent:       lipgloss.Color("#C2410C"),
	Success:      lipgloss.Color("#15803D"),
	Error:        lipgloss.Color("#BE123C"),
	Text:         lipgloss.Color("#0F172A"),
	TextDim:      lipgloss.Color("#475569"),
	BgDark:       lipgloss.Color("#F8FAFC"),
	BgCard:       lipgloss.Color("#E2E8F0"),
	Border:       lipgloss.Color("#CBD5E1"),
	ArcadeYellow: lipgloss.Color("#CA8A04"),
	ArcadeCyan:   lipgloss.Color("#0891B2"),
	Heat: [5]color.Color{
		lipgloss.Color("#EBEDF0"),
		lipgloss.Color("#9BE9A8"),
		lipgloss.Color("#40C463"),
		lipgloss.Color("#30A14E"),
		lipgloss.Color("#216E39"),
	},
}

// Active colors. Use swaps them.
var (
	Primary      color.Color
	Secondary    color.Color
	Accent       color.Color
	Success      color.Color
	Error        color.Color
	Text         color.Color
	TextDim      color.Color
	BgDark       color.Color
	BgCard       color.Color
	Border       color.Color
	ArcadeYellow color.Color
	ArcadeCyan   color.Color
	Heat         [5]color.Color
)

// Typography
var (
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Body     lipgloss.Style
	Hint     lipgloss.Style
)

// Layout
var (
	Header lipgloss.Style
	Footer lipgloss.Style
	Card   lipgloss.Style
)

// States
var (
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	Correct    lipgloss.Style
	Incorrect  lipgloss.Style
	Locked     lipgloss.Style
	Star       lipgloss.Style
)

// Components
var (
	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style
	ButtonActive   lipgloss.Style
	ButtonInactive lipgloss.Style
)

func init() {
	Use(DarkPalette)
}

// Use makes p the active palette and rebuilds every style.
func Use(p Palette) {
	Primary, Secondary, Accent = p.Primary, p.Secondary, p.Accent
	Success, Error = p.Success, p.Error
	Text, TextDim = p.Text, p.TextDim
	BgDark, BgCard, Border = p.BgDark, p.BgCard, p.Border
	ArcadeYellow, ArcadeCyan = p.ArcadeYellow, p.ArcadeCyan
	Heat = p.Heat

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		Align(lipgloss.Center)

	Subtitle = lipgloss.NewStyle().
		Foreground(TextDim).
		Align(lipgloss.Center)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Header = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Footer = lipgloss.NewStyle().
		Background(BgCard).
		Padding(0, 2)

	Card = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)

	Selected = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	Unselected = lipgloss.NewStyle().
		Foreground(Text)

	Correct = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Incorrect = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	Locked = lipgloss.NewStyle().
		Foreground(TextDim)

	Star = lipgloss.NewStyle().
		Foreground(ArcadeYellow)

	ProgressFilled = lipgloss.NewStyle().
		Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
		Background(Border)

	ButtonActive = lipgloss.NewStyle().
		Background(Primary).
		Foreground(Text).
		Bold(true).
		Padding(0, 2)

	ButtonInactive = lipgloss.NewStyle().
		Background(BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 2)
}

// Apply selects the palette for a theme setting. "auto" follows the
// terminal background.
func Apply(name string, darkBackground bool) {
	switch name {
	case "light":
		Use(LightPalette)
	case "dark":
		Use(DarkPalette)
	default:
		if darkBackground {
			Use(DarkPalette)
		} else {
			Use(LightPalette)
		}
	}
}

// Stars renders n filled stars out of total.
func Stars(n, total int) string {
	filled := ""
	empty := ""
	for i := 0; i < total; i++ {
		if i < n {
			filled += "★"
		} else {
			empty += "☆"
		}
	}
	return Star.Render(filled) + Locked.Render(empty)
}
