package home

import (
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/stats"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle        MascotVariant = iota // Default purple
	MascotCelebrating                      // Gold, star eyes: streak going
	MascotAlert                            // Orange, exclamation: streak lapsed
)

// celebrateStreak is the daily streak at which the mascot celebrates.
const celebrateStreak = 3

// MascotFor picks the variant for a practice history.
func MascotFor(sum stats.Summary) MascotVariant {
	switch {
	case sum.Streak.Current >= celebrateStreak:
		return MascotCelebrating
	case sum.Overall.Count > 0 && sum.Streak.Current == 0:
		return MascotAlert
	default:
		return MascotIdle
	}
}

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ ±×÷ │
└─────┘`

const mascotCelebrating = `┌─────┐
│ ★ ★ │
│  ▿  │
│ ±×÷ │
└─╥═╥─┘
  ╚═╝`

const mascotAlert = `┌─────┐
│ ◉ ◉ │ !
│  ▽  │
│ ±×÷ │
└─────┘`

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(variant ...MascotVariant) string {
	v := MascotIdle
	if len(variant) > 0 {
		v = variant[0]
	}

	var art string
	var fg = theme.Primary

	switch v {
	case MascotCelebrating:
		art = mascotCelebrating
		fg = theme.ArcadeYellow
	case MascotAlert:
		art = mascotAlert
		fg = theme.Accent
	default:
		art = mascotIdle
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
