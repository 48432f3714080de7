package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Agampodige/MathDrill/internal/app"
	"github.com/Agampodige/MathDrill/internal/screen"
)

// runApp wires the services and launches the TUI. start, when non-nil,
// builds the screen shown on top of home.
func runApp(cmd *cobra.Command, start func(svc *screen.Services) screen.Screen) error {
	env, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	env.restoreInBackground()
	env.logger.Info("starting", "version", version)

	return app.Run(app.Options{
		Services:    env.svc,
		SkipWelcome: start != nil,
		Start:       start,
	})
}
