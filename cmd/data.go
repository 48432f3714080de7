package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/attempt"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the answer history to a JSON file",
	Long: `Write every recorded answer to <file> as JSON. Use "-" for stdout.
With --from-host the host's copy is exported instead of the local one.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromHost, _ := cmd.Flags().GetBool("from-host")

		env, err := openEnv(cmd, fromHost)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		var c attempt.Collection
		if fromHost {
			if err := env.waitHost(ctx, env.cfg.HandshakeTimeout); err != nil {
				return err
			}
			c, err = env.gateway.ExportData(ctx)
		} else {
			c, err = env.svc.Attempts.Export(ctx)
		}
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		if args[0] == "-" {
			return attempt.WriteCollection(cmd.OutOrStdout(), c)
		}
		var buf bytes.Buffer
		if err := attempt.WriteCollection(&buf, c); err != nil {
			return err
		}
		if err := os.WriteFile(args[0], buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d answers to %s\n", len(c.Attempts), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load answers from a JSON export",
	Long: `Load answers exported by "mathdrill export". Imported answers are appended
with new ids unless --replace is given, which swaps the whole history.
With --to-host the file is sent to the host instead of the local store.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		replace, _ := cmd.Flags().GetBool("replace")
		toHost, _ := cmd.Flags().GetBool("to-host")

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		c, err := attempt.ParseCollection(raw)
		if err != nil {
			return err
		}

		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		var n int
		if toHost {
			if err := env.waitHost(ctx, env.cfg.HandshakeTimeout); err != nil {
				return err
			}
			n, err = env.gateway.ImportData(ctx, c, replace)
		} else {
			// The local store mirrors the result to a ready host.
			env.preferHost(ctx)
			n, err = env.svc.Attempts.Import(ctx, c, replace)
		}
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d answers\n", n)
		return nil
	},
}

func init() {
	exportCmd.Flags().Bool("from-host", false, "Export the host's history")
	importCmd.Flags().Bool("replace", false, "Replace the history instead of appending")
	importCmd.Flags().Bool("to-host", false, "Import into the host instead of the local store")
}
