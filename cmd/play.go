package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/problemgen"
	"github.com/Agampodige/MathDrill/internal/screen"
	"github.com/Agampodige/MathDrill/internal/screens/practice"
	sessionscreen "github.com/Agampodige/MathDrill/internal/screens/session"
	"github.com/Agampodige/MathDrill/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a practice session",
	Long: `Open the free drill. With --op the drill starts right away; --digits and
--count default to the difficulty and session length from settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opVal, _ := cmd.Flags().GetString("op")
		digits, _ := cmd.Flags().GetInt("digits")
		count, _ := cmd.Flags().GetInt("count")

		if opVal == "" {
			if cmd.Flags().Changed("digits") || cmd.Flags().Changed("count") {
				return fmt.Errorf("--digits and --count need --op")
			}
			return runApp(cmd, func(svc *screen.Services) screen.Screen { return practice.New(svc) })
		}

		op, err := problemgen.ParseOperation(opVal)
		if err != nil {
			return err
		}
		if digits != 0 && (digits < problemgen.MinDigits || digits > problemgen.MaxDigits) {
			return fmt.Errorf("--digits must be between %d and %d", problemgen.MinDigits, problemgen.MaxDigits)
		}
		if count < 0 {
			return fmt.Errorf("--count must be positive")
		}

		return runApp(cmd, func(svc *screen.Services) screen.Screen {
			d, n := digits, count
			if d == 0 {
				d = svc.Prefs.Digits()
			}
			if n == 0 {
				n = svc.Prefs.ProblemsPerSession
			}
			return sessionscreen.New(svc, session.PracticeConfig(op, d, n))
		})
	},
}

func init() {
	playCmd.Flags().String("op", "", "Operation: addition, subtraction, multiplication, division or complex")
	playCmd.Flags().Int("digits", 0, "Digits per operand (default from settings)")
	playCmd.Flags().Int("count", 0, "Number of questions (default from settings)")
}
