package analytics

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/Agampodige/MathDrill/internal/attempt"
	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/stats"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
}

func (s *AnalyticsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return centered(width).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return centered(width).Foreground(theme.TextDim).
			Render("\n\n  Loading statistics...")
	}
	if s.confirm {
		return s.renderConfirm(width)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.renderTabs(width))
	b.WriteString("\n\n")

	if s.summary.Overall.Count == 0 {
		b.WriteString(centered(width).Foreground(theme.TextDim).Italic(true).
			Render("No answers yet. Start practicing!"))
	} else {
		switch s.tab {
		case tabOverview:
			b.WriteString(s.renderOverview(width))
		case tabOperations:
			b.WriteString(s.renderOperations(width))
		case tabActivity:
			b.WriteString(s.renderActivity(width))
		case tabRecent:
			b.WriteString(s.renderRecent(width, height-6))
		}
	}

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(centered(width).Foreground(theme.Accent).Render(s.notice))
	}
	return b.String()
}

func (s *AnalyticsScreen) renderTabs(width int) string {
	parts := make([]string, len(tabNames))
	for i, name := range tabNames {
		style := lipgloss.NewStyle().Padding(0, 1).Foreground(theme.TextDim)
		if tab(i) == s.tab {
			style = style.Foreground(theme.Primary).Bold(true).Reverse(true)
		}
		parts[i] = style.Render(fmt.Sprintf("%d %s", i+1, name))
	}
	line := strings.Join(parts, " ")
	if s.fromHost {
		line += lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("   (from host)")
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
}

// statCard renders a small card with a big value and a caption.
func statCard(value, caption string, color lipgloss.Style) string {
	body := color.Bold(true).Render(value) + "\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(caption)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 2).
		Width(18).
		Align(lipgloss.Center).
		Render(body)
}

func (s *AnalyticsScreen) renderOverview(width int) string {
	sum := s.summary
	now := s.svc.Clock()
	text := lipgloss.NewStyle().Foreground(theme.Text)

	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		statCard(humanize.Comma(int64(sum.Overall.Count)), "answers", text),
		statCard(fmt.Sprintf("%d%%", sum.Overall.Accuracy), "accuracy", lipgloss.NewStyle().Foreground(theme.Success)),
		statCard(fmt.Sprintf("%.1fs", sum.Overall.AvgTime), "avg time", lipgloss.NewStyle().Foreground(theme.Secondary)),
		statCard(fmt.Sprintf("%d", sum.Streak.Current), "day streak", lipgloss.NewStyle().Foreground(theme.Accent)),
	)

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, cards))
	b.WriteString("\n\n")

	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	lines := []string{
		fmt.Sprintf("%s correct of %s", humanize.Comma(int64(sum.Overall.Correct)), humanize.Comma(int64(sum.Overall.Count))),
		fmt.Sprintf("Total practice time %s", practiceTime(sum.Overall.TotalTime)),
	}
	if !sum.LastPracticed.IsZero() {
		lines = append(lines, "Last practiced "+humanize.RelTime(sum.LastPracticed, now, "ago", "from now"))
	}
	for _, l := range lines {
		b.WriteString(centered(width).Inherit(dim).Render(l))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if sum.Insights.HasTop() {
		b.WriteString(centered(width).Foreground(theme.Success).
			Render("Strongest: " + sum.Insights.Top.DisplayName()))
		b.WriteString("\n")
	}
	if sum.Insights.HasFocus() {
		b.WriteString(centered(width).Foreground(theme.Accent).
			Render("Needs practice: " + sum.Insights.Focus.DisplayName()))
		b.WriteString("\n")
	}
	return b.String()
}

// practiceTime renders seconds as a rounded duration such as 12m30s.
func practiceTime(secs float64) string {
	return time.Duration(secs * float64(time.Second)).Round(time.Second).String()
}

func (s *AnalyticsScreen) renderOperations(width int) string {
	byOp := s.summary.ByOperation
	ops := stats.Operations(byOp)

	barWidth := max(min(width-50, 30), 10)
	header := fmt.Sprintf("%-16s %8s %8s %8s  %s", "Operation", "Answers", "Correct", "Avg", "Accuracy")

	var rows []string
	rows = append(rows, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(header))
	for _, op := range ops {
		t := byOp[op]
		bar := components.NewProgressBar("", float64(t.Accuracy)/100, true, barWidth+6)
		label := op.DisplayName()
		if !op.Valid() {
			label = string(op)
		}
		row := fmt.Sprintf("%-16s %8s %8s %7.1fs  ",
			label, humanize.Comma(int64(t.Count)), humanize.Comma(int64(t.Correct)), t.AvgTime)
		rows = append(rows, lipgloss.NewStyle().Foreground(theme.Text).Render(row)+bar.View())
	}
	for _, op := range problemgen.Operations {
		if _, ok := byOp[op]; !ok {
			rows = append(rows, lipgloss.NewStyle().Foreground(theme.TextDim).
				Render(fmt.Sprintf("%-16s %8s", op.DisplayName(), "-")))
		}
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(rows, "\n"))
}

func (s *AnalyticsScreen) renderActivity(width int) string {
	sum := s.summary
	var b strings.Builder

	streak := fmt.Sprintf("Current streak %d  ·  Best %d  ·  Active days %d",
		sum.Streak.Current, sum.Streak.Best, sum.Streak.ActiveDays)
	b.WriteString(centered(width).Foreground(theme.Text).Bold(true).Render(streak))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderHeatmap(sum.Heatmap, width-8)))
	b.WriteString("\n\n")

	caption := fmt.Sprintf("%d active days in the last year", sum.Heatmap.Active())
	if sum.Heatmap.Max > 0 {
		caption += fmt.Sprintf("  ·  busiest day %s answers", humanize.Comma(int64(sum.Heatmap.Max)))
	}
	b.WriteString(centered(width).Foreground(theme.TextDim).Render(caption))
	return b.String()
}

// renderHeatmap draws one column per week, newest on the right, trimmed
// to the weeks that fit in width.
func renderHeatmap(h stats.Heatmap, width int) string {
	weeks := h.Weeks()
	fit := max(width/2, 1)
	if len(weeks) > fit {
		weeks = weeks[len(weeks)-fit:]
	}

	cell := func(level int) string {
		level = min(max(level, 0), stats.HeatmapLevels-1)
		return lipgloss.NewStyle().Foreground(theme.Heat[level]).Render("■")
	}

	var rows [7]strings.Builder
	for _, week := range weeks {
		for d := range 7 {
			if d < len(week) {
				rows[d].WriteString(cell(week[d].Level))
			} else {
				rows[d].WriteString(" ")
			}
			rows[d].WriteString(" ")
		}
	}

	lines := make([]string, 0, 8)
	for d := range rows {
		lines = append(lines, rows[d].String())
	}

	legend := lipgloss.NewStyle().Foreground(theme.TextDim).Render("Less ")
	for lvl := range stats.HeatmapLevels {
		legend += cell(lvl) + " "
	}
	legend += lipgloss.NewStyle().Foreground(theme.TextDim).Render("More")
	lines = append(lines, "", legend)
	return strings.Join(lines, "\n")
}

func (s *AnalyticsScreen) renderRecent(width, height int) string {
	if len(s.recent) == 0 {
		return centered(width).Foreground(theme.TextDim).Italic(true).Render("No recent answers.")
	}
	now := s.svc.Clock()
	height = max(height, 3)

	start := 0
	if s.selected >= height {
		start = s.selected - height + 1
	}
	end := min(start+height, len(s.recent))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			recentLine(s.recent[i], now, i == s.selected)))
		b.WriteString("\n")
	}
	return b.String()
}

func recentLine(a attempt.Attempt, now time.Time, selected bool) string {
	mark := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
	answer := problemgen.FormatNumber(a.UserAnswer)
	if !a.IsCorrect {
		mark = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
		answer += " (" + problemgen.FormatNumber(a.CorrectAnswer) + ")"
	}

	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if selected {
		prefix = "> "
		style = style.Foreground(theme.Primary).Bold(true)
	}
	when := ""
	if !a.Timestamp.IsZero() {
		when = humanize.RelTime(a.Timestamp.Time, now, "ago", "from now")
	}
	line := fmt.Sprintf("%-24s = %-18s %5.1fs  %s", a.Question, answer, a.TimeTaken, when)
	return prefix + mark + " " + style.Render(line)
}

func (s *AnalyticsScreen) renderConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(centered(width).Foreground(theme.Error).Bold(true).Render("Clear all progress?"))
	b.WriteString("\n")
	b.WriteString(centered(width).Foreground(theme.TextDim).
		Render("This deletes every recorded answer and all level stars."))
	b.WriteString("\n\n")
	buttons := lipgloss.JoinHorizontal(lipgloss.Top, s.buttons[0].View(), "   ", s.buttons[1].View())
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, buttons))
	return b.String()
}
