package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsShowCmd.RunE(cmd, args)
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()
		env.preferHost(cmd.Context())

		st, err := env.svc.Settings.Load(cmd.Context())
		if err != nil {
			return err
		}
		printSettings(cmd, st)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting. Keys: theme, soundEnabled, notificationsEnabled,
problemsPerSession, difficultyLevel, showTimer, showAccuracy,
autoCheckAnswers, adaptiveDifficulty. Out of range values are clamped.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()
		env.preferHost(cmd.Context())

		st, err := env.svc.Settings.Update(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		v, _ := st.Get(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], v)
		return nil
	},
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore default settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd, true)
		if err != nil {
			return err
		}
		defer env.Close()
		env.preferHost(cmd.Context())

		st, err := env.svc.Settings.Reset(cmd.Context())
		if err != nil {
			return err
		}
		printSettings(cmd, st)
		return nil
	},
}

func printSettings(cmd *cobra.Command, st settings.Settings) {
	out := cmd.OutOrStdout()
	for _, k := range settings.Keys {
		v, _ := st.Get(k)
		fmt.Fprintf(out, "%-22s %s\n", k, v)
	}
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
}
