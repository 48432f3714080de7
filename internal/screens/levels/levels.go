// Package levels is the level browser: the catalog grouped into stages
// with lock state, stars and overall progression.
package levels

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/router"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/ui/components"
	"github.com/Agampodige/MathDrill/internal/ui/layout"
	"github.com/Agampodige/MathDrill/internal/ui/theme"
)

// stageSize is how many consecutive levels share a stage header.
const stageSize = 5

// progressLines is the height of the progression block above the list.
const progressLines = 3

type rowKind int

const (
	rowStageHeader rowKind = iota
	rowLevel
)

type row struct {
	kind  rowKind
	stage int
	level *level.Level
}

// levelsMsg carries the loaded levels.
type levelsMsg struct {
	levels []level.Level
	prog   level.Progression
	err    error
}

// LevelsScreen lists every level and opens its detail on Enter.
type LevelsScreen struct {
	svc          *screen.Services
	levels       []level.Level
	prog         level.Progression
	rows         []row
	cursor       int
	scrollOffset int
	loaded       bool
	err          error
}

var (
	_ screen.Screen          = (*LevelsScreen)(nil)
	_ screen.KeyHintProvider = (*LevelsScreen)(nil)
	_ screen.Resumer         = (*LevelsScreen)(nil)
)

// New creates the level browser.
func New(svc *screen.Services) *LevelsScreen {
	return &LevelsScreen{svc: svc}
}

func (s *LevelsScreen) Init() tea.Cmd {
	return s.load()
}

// Resume reloads after a level run so new stars and unlocks show.
func (s *LevelsScreen) Resume() tea.Cmd {
	return s.load()
}

func (s *LevelsScreen) load() tea.Cmd {
	svc := s.svc
	return func() tea.Msg {
		lv, prog, err := svc.Levels.Levels(context.Background())
		return levelsMsg{levels: lv, prog: prog, err: err}
	}
}

func (s *LevelsScreen) Title() string {
	return "Levels"
}

func (s *LevelsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Tab", Description: "Stage"},
		{Key: "Enter", Description: "Details"},
		{Key: "P", Description: "Play"},
		{Key: "Esc", Description: "Back"},
	}
}

func stageOf(id int) int {
	return (id - 1) / stageSize
}

// setLevels rebuilds the rows and keeps the cursor on the same level.
func (s *LevelsScreen) setLevels(levels []level.Level) {
	keep := 0
	if sel := s.selected(); sel != nil {
		keep = sel.ID
	}

	s.levels = levels
	s.rows = s.rows[:0]
	stage := -1
	for i := range s.levels {
		lv := &s.levels[i]
		if st := stageOf(lv.ID); st != stage {
			stage = st
			s.rows = append(s.rows, row{kind: rowStageHeader, stage: st})
		}
		s.rows = append(s.rows, row{kind: rowLevel, stage: stage, level: lv})
	}

	s.cursor = -1
	for i, r := range s.rows {
		if r.kind != rowLevel {
			continue
		}
		if s.cursor < 0 || r.level.ID == keep {
			s.cursor = i
		}
		if keep == 0 && !r.level.IsLocked && !r.level.IsCompleted {
			// Start on the first level still to beat.
			s.cursor = i
			break
		}
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
}

func (s *LevelsScreen) selected() *level.Level {
	if s.cursor < 0 || s.cursor >= len(s.rows) {
		return nil
	}
	return s.rows[s.cursor].level
}

func (s *LevelsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case levelsMsg:
		s.loaded = true
		s.err = msg.err
		if msg.err != nil {
			s.svc.Log().Warn("load levels", "err", msg.err)
			return s, nil
		}
		s.prog = msg.prog
		s.setLevels(msg.levels)
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "tab":
			s.nextStage()
		case "shift+tab":
			s.prevStage()
		case "enter":
			return s, s.openDetail()
		case "p":
			return s, s.play()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

// moveCursor moves the cursor by delta, skipping stage headers.
func (s *LevelsScreen) moveCursor(delta int) {
	next := s.cursor + delta
	for next >= 0 && next < len(s.rows) {
		if s.rows[next].kind == rowLevel {
			s.cursor = next
			return
		}
		next += delta
	}
}

// nextStage jumps to the first level of the next stage.
func (s *LevelsScreen) nextStage() {
	if len(s.rows) == 0 {
		return
	}
	current := s.rows[s.cursor].stage
	for i := s.cursor + 1; i < len(s.rows); i++ {
		if s.rows[i].kind == rowLevel && s.rows[i].stage != current {
			s.cursor = i
			return
		}
	}
}

// prevStage jumps to the first level of the previous stage.
func (s *LevelsScreen) prevStage() {
	if len(s.rows) == 0 {
		return
	}
	target := s.rows[s.cursor].stage - 1
	for i, r := range s.rows {
		if r.kind == rowLevel && r.stage == target {
			s.cursor = i
			return
		}
	}
}

// adjustScroll keeps the cursor and its stage header inside the viewport.
func (s *LevelsScreen) adjustScroll(height int) {
	if height <= 0 {
		return
	}
	top := s.cursor
	if top > 0 && s.rows[top-1].kind == rowStageHeader {
		top--
	}
	if top < s.scrollOffset {
		s.scrollOffset = top
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

func (s *LevelsScreen) openDetail() tea.Cmd {
	lv := s.selected()
	if lv == nil {
		return nil
	}
	detail := newDetail(s.svc, *lv, s.levelName)
	return func() tea.Msg { return router.PushScreenMsg{Screen: detail} }
}

// play starts the selected level directly when it is unlocked.
func (s *LevelsScreen) play() tea.Cmd {
	lv := s.selected()
	if lv == nil || lv.IsLocked {
		return nil
	}
	next := playLevel(s.svc, lv.ID)
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

// levelName resolves a level id for unlock descriptions.
func (s *LevelsScreen) levelName(id int) string {
	for _, lv := range s.levels {
		if lv.ID == id {
			return lv.Name
		}
	}
	return ""
}

func (s *LevelsScreen) View(width, height int) string {
	switch {
	case !s.loaded:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Padding(1, 2).Render("Loading levels...")
	case s.err != nil:
		return lipgloss.NewStyle().Foreground(theme.Error).Padding(1, 2).
			Render("Could not load levels: " + s.err.Error())
	case len(s.rows) == 0:
		return lipgloss.NewStyle().Foreground(theme.TextDim).Padding(1, 2).Render("No levels available.")
	}

	var b strings.Builder
	b.WriteString(s.renderProgression(width))
	b.WriteString("\n")

	listHeight := height - progressLines
	s.adjustScroll(listHeight)

	var lines []string
	for i := s.scrollOffset; i < len(s.rows) && len(lines) < listHeight; i++ {
		r := s.rows[i]
		switch r.kind {
		case rowStageHeader:
			lines = append(lines, s.renderStageHeader(r.stage, width))
		case rowLevel:
			lines = append(lines, s.renderLevelRow(*r.level, i == s.cursor, width))
		}
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// renderProgression renders the completion bar and star count.
func (s *LevelsScreen) renderProgression(width int) string {
	p := s.prog
	stars := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).
		Render(fmt.Sprintf("★ %d/%d", p.TotalStars, p.MaxPossibleStars))
	done := lipgloss.NewStyle().Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d/%d completed", p.CompletedLevels, p.TotalLevels))

	barWidth := max(width-lipgloss.Width(stars)-lipgloss.Width(done)-12, 10)
	bar := components.NewProgressBar("", p.ProgressPercentage/100, true, barWidth)
	return "\n  " + bar.View() + "  " + done + "  " + stars + "\n"
}

func (s *LevelsScreen) renderStageHeader(stage, width int) string {
	first := stage*stageSize + 1
	name := fmt.Sprintf("STAGE %d  ·  LEVELS %d-%d", stage+1, first, first+stageSize-1)
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(0, 0, 0, 2).
		Render(name)
}

// stateIcon returns the marker and label for a level's state.
func stateIcon(lv level.Level) (string, string) {
	switch {
	case lv.IsLocked:
		return "■", "Locked"
	case lv.IsCompleted:
		return "●", "Cleared"
	default:
		return "○", "Open"
	}
}

func (s *LevelsScreen) renderLevelRow(lv level.Level, selected bool, width int) string {
	icon, _ := stateIcon(lv)
	kind := fmt.Sprintf("%s %dd", lv.Operation.Symbol(), lv.Digits)
	if lv.Timed() {
		kind += " ⏱"
	}

	const (
		padding    = 4
		iconWidth  = 3
		kindWidth  = 8
		starsWidth = 5
		spacing    = 4
	)
	nameWidth := max(width-padding-iconWidth-kindWidth-starsWidth-spacing, 10)
	name := fmt.Sprintf("%2d. %s", lv.ID, lv.Name)
	if lipgloss.Width(name) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	var nameStyle, kindStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		kindStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	case lv.IsLocked:
		nameStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
		kindStyle = nameStyle
	case lv.IsCompleted:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Success)
		kindStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	default:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		kindStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	}

	cursor := "  "
	if selected {
		cursor = lipgloss.NewStyle().Foreground(theme.Primary).Render("▸ ")
	}
	stars := theme.Stars(lv.StarsEarned, level.MaxStars)
	if lv.IsLocked {
		stars = theme.Locked.Render("  -")
	}

	return "  " + cursor +
		nameStyle.Render(icon+" ") +
		nameStyle.Width(nameWidth).Render(name) +
		kindStyle.Width(kindWidth).Render(kind) +
		"  " + stars
}
