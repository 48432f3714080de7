package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/problemgen"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Answer generated questions on the command line (no database)",
	Long: `Generate questions for one operation and answer them line by line.

Nothing is recorded: no database, no host. Useful for checking what a
difficulty setting produces.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("op", "addition", "Operation: addition, subtraction, multiplication, division or complex")
	previewCmd.Flags().Int("digits", 1, "Digits per operand")
	previewCmd.Flags().Int("count", 5, "Number of questions")
	previewCmd.Flags().Uint64("seed", 0, "Random seed for a repeatable set (0 picks one)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	opVal, _ := cmd.Flags().GetString("op")
	digits, _ := cmd.Flags().GetInt("digits")
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetUint64("seed")

	op, err := problemgen.ParseOperation(opVal)
	if err != nil {
		return err
	}
	if digits < problemgen.MinDigits || digits > problemgen.MaxDigits {
		return fmt.Errorf("--digits must be between %d and %d", problemgen.MinDigits, problemgen.MaxDigits)
	}
	if count < 1 {
		return errors.New("--count must be at least 1")
	}

	gen := problemgen.New(problemgen.DefaultConfig())
	if seed != 0 {
		gen = problemgen.NewSeeded(problemgen.DefaultConfig(), seed)
	}

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	fmt.Fprintf(out, "%s, %d digit(s), %d questions\n\n", op.DisplayName(), digits, count)

	var correct, answered int
	for i, q := range gen.GenerateSet(op, digits, count) {
		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, count)
		fmt.Fprintf(out, "%s = ", q.Text)

		start := time.Now()
		if !scanner.Scan() {
			fmt.Fprintln(out, "\n(input closed)")
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			fmt.Fprintf(out, "(skipped) Answer: %d\n\n", q.Answer)
			continue
		}

		v, err := problemgen.ParseAnswer(input)
		if err != nil {
			fmt.Fprintf(out, "Not a number. Answer: %d\n\n", q.Answer)
			continue
		}
		answered++
		if q.Check(v) {
			correct++
			fmt.Fprintf(out, "\033[32m✓ Correct!\033[0m (%.1fs)\n\n", time.Since(start).Seconds())
		} else {
			fmt.Fprintf(out, "\033[31m✗ Wrong.\033[0m Answer: %d\n\n", q.Answer)
		}
	}

	fmt.Fprintf(out, "── Summary: %d/%d correct ──\n", correct, answered)
	return nil
}
