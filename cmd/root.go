package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mathdrill",
	Short: "Mental math practice in the terminal",
	Long: `MathDrill drills arithmetic: free practice sessions, unlockable levels
with star ratings, and statistics over every answer you give.

With --bridge it connects to a host application over a websocket and
shares attempts, levels and settings with it.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, nil)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides MATHDRILL_DB env var)")
	flags.String("bridge", "", "Host websocket URL, e.g. ws://127.0.0.1:8765/bridge (overrides MATHDRILL_BRIDGE_URL)")
	flags.String("log", "", "Log file path (overrides MATHDRILL_LOG_FILE)")
	flags.String("log-level", "", "Log level: debug, info, warn or error (overrides MATHDRILL_LOG_LEVEL)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(levelCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(versionCmd)
}
