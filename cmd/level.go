package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/level"
	"github.com/Agampodige/MathDrill/internal/screen"
	sessionscreen "github.com/Agampodige/MathDrill/internal/screens/session"
)

var levelCmd = &cobra.Command{
	Use:   "level",
	Short: "Browse and play levels",
}

var levelListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all levels with lock state and stars",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()
		env.preferHost(cmd.Context())

		levels, prog, err := env.svc.Levels.Levels(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%3s  %-28s  %-15s  %6s  %9s  %-6s  %s\n",
			"ID", "Name", "Operation", "Digits", "Questions", "Stars", "Unlock")
		fmt.Fprintln(out, strings.Repeat("─", 100))

		for _, l := range levels {
			name := l.Name
			if len(name) > 28 {
				name = name[:25] + "..."
			}
			stars := strings.Repeat("*", l.StarsEarned) + strings.Repeat(".", level.MaxStars-l.StarsEarned)
			unlock := "open"
			if l.IsLocked {
				unlock = level.ParseCondition(l.UnlockCondition).String()
			}
			questions := strconv.Itoa(l.Requirements.TotalQuestions)
			if l.Timed() {
				questions += fmt.Sprintf("/%ds", l.Requirements.TimeLimit)
			}
			fmt.Fprintf(out, "%3d  %-28s  %-15s  %6d  %9s  %-6s  %s\n",
				l.ID, name, l.Operation.DisplayName(), l.Digits, questions, stars, unlock)
		}

		fmt.Fprintf(out, "\n%d/%d completed, %d/%d stars (%.0f%%)\n",
			prog.CompletedLevels, prog.TotalLevels, prog.TotalStars, prog.MaxPossibleStars, prog.ProgressPercentage)
		return nil
	},
}

var levelPlayCmd = &cobra.Command{
	Use:   "play <id>",
	Short: "Play a level",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid level id %q", args[0])
		}

		// Check the level before starting the TUI so errors print plainly.
		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		env.preferHost(cmd.Context())
		lvl, err := env.svc.Levels.Level(cmd.Context(), id)
		env.Close()
		switch {
		case errors.Is(err, level.ErrNotFound):
			return fmt.Errorf("level %d does not exist", id)
		case err != nil:
			return err
		case lvl.IsLocked:
			return fmt.Errorf("level %d is locked: %s", id, level.ParseCondition(lvl.UnlockCondition))
		}

		return runApp(cmd, func(svc *screen.Services) screen.Screen {
			return sessionscreen.NewLevel(svc, id)
		})
	},
}

func init() {
	levelCmd.AddCommand(levelListCmd)
	levelCmd.AddCommand(levelPlayCmd)
}
