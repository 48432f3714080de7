package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// Block-letter MATH over a spaced DRILL, narrow enough for the cabinet.
const arcadeTitleFull = ` ███╗   ███╗ █████╗ ████████╗██╗  ██╗
 ████╗ ████║██╔══██╗╚══██╔══╝██║  ██║
 ██╔████╔██║███████║   ██║   ███████║
 ██║╚██╔╝██║██╔══██║   ██║   ██╔══██║
 ██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║
 ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝`

const arcadeSubtitle = "D  ·  R  ·  I  ·  L  ·  L"

const arcadeTitleCompact = "M · A · T · H · D · R · I · L · L"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true)
	center := lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center)

	if compact {
		return center.Render(style.Render(arcadeTitleCompact))
	}
	sub := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	return center.Render(style.Render(arcadeTitleFull) + "\n" + sub.Render(arcadeSubtitle))
}

// dashboard is the numbers shown in the stats bar.
type dashboard struct {
	stars, maxStars int
	streak          int
	accuracy        int
	attempts        int
}

// renderStatsBar renders the dashboard stats in a bordered box matching content width.
func renderStatsBar(d dashboard, cw int, compact bool) string {
	starStyle := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true)
	streakStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	accStyle := lipgloss.NewStyle().Foreground(theme.ArcadeCyan).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(theme.TextDim)

	var line string
	if compact {
		line = fmt.Sprintf("%s %s %s",
			starStyle.Render(fmt.Sprintf("★%d", d.stars)),
			streakStyle.Render(fmt.Sprintf("▲%d", d.streak)),
			accuracyText(d, true, accStyle, dimStyle),
		)
	} else {
		line = fmt.Sprintf("%s  %s  %s",
			starStyle.Render(fmt.Sprintf("★ %d/%d STARS", d.stars, d.maxStars)),
			streakStyle.Render(fmt.Sprintf("▲ %d DAY STREAK", d.streak)),
			accuracyText(d, false, accStyle, dimStyle),
		)
	}

	// Wrap in a double-border box at the same content width
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.ArcadeCyan).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(line)
}

func accuracyText(d dashboard, compact bool, active, dim lipgloss.Style) string {
	if d.attempts == 0 {
		if compact {
			return dim.Render("%-")
		}
		return dim.Render("% NO ANSWERS YET")
	}
	if compact {
		return active.Render(fmt.Sprintf("%d%%", d.accuracy))
	}
	return active.Render(fmt.Sprintf("%d%% ACCURACY", d.accuracy))
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 22

// renderArcadeMenu renders each menu item as a fixed-width button.
func renderArcadeMenu(items []string, selected int, cw int) string {
	buttons := make([]string, 0, len(items))
	for i, label := range items {
		buttons = append(buttons, components.ArcadeButton(label, i == selected, buttonWidth))
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(buttons, "\n"))
}

// renderArcadeMenuCompact renders menu items as simple text lines (no borders)
// for very small terminals where bordered buttons would overflow.
func renderArcadeMenuCompact(items []string, selected int, cw int) string {
	var lines []string
	for i, label := range items {
		var line string
		if i == selected {
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.ArcadeYellow).
				Bold(true).
				Render(" ▸ " + label + " ")
		} else {
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label)
		}
		lines = append(lines, line)
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(strings.Join(lines, "\n"))
}

// renderOfflineNote renders a dim one-line note while the host is unreachable.
func renderOfflineNote(state string, cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(cw).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("Host %s: progress is saved locally", state))
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}
