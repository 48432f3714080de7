package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear answer history and level progress",
	Long: `Delete every recorded answer and every level completion. With --settings
preferences go back to their defaults too. A configured host is cleared as well.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		withSettings, _ := cmd.Flags().GetBool("settings")

		if !yes {
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Clear all progress? This cannot be undone. [y/N] ")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()
		env.preferHost(cmd.Context())

		ctx := cmd.Context()
		errs := []error{
			env.svc.Attempts.Clear(ctx),
			env.svc.Levels.Reset(ctx),
		}
		if withSettings {
			_, err := env.svc.Settings.Reset(ctx)
			errs = append(errs, err)
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "All progress cleared.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	resetCmd.Flags().Bool("settings", false, "Also restore default settings")
}

// confirm asks a yes/no question and reads one line of input.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
