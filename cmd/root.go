package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pawlock/internal/ui/preferences"
)

const appName = "pawlock"

type rootFlags struct {
	exitKey   string
	timer     string
	hideTimer bool
	opacity   float64
	noProtect bool
	verbose   bool
}

var flags rootFlags

var rootCmd = &cobra.Command{
	Use:   "pawlock",
	Short: "PawLock shields your screen from curious paws",
	Long: `PawLock raises a fullscreen shield that swallows every key press and
mouse click until you dismiss it with the unlock combination or by holding
the on-screen close control for three seconds. Running pawlock with no
subcommand launches the tray app and starts protecting immediately.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flags.exitKey, "exit-key", "", `unlock combination, e.g. "cmd+option+u"`)
	rootCmd.Flags().StringVar(&flags.timer, "timer", "", `end protection after this long, e.g. "30m", "2h", "1h30m"`)
	rootCmd.Flags().BoolVar(&flags.hideTimer, "hide-timer", false, "do not show the countdown on the overlay")
	rootCmd.Flags().Float64Var(&flags.opacity, "opacity", 0, "overlay backdrop opacity between 0 and 1")
	rootCmd.Flags().BoolVar(&flags.noProtect, "no-protect", false, "launch to the tray without starting protection")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log debug detail to the console")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(stopCmd, statusCmd, versionCmd)
}

// mergeSettings applies explicitly set CLI flags over the persisted
// settings. Unset flags leave the file values alone.
func mergeSettings(cmd *cobra.Command, settings preferences.Settings) preferences.Settings {
	if cmd.Flags().Changed("exit-key") {
		settings.ExitKey = flags.exitKey
	}
	if cmd.Flags().Changed("timer") {
		settings.Timer = flags.timer
	}
	if cmd.Flags().Changed("hide-timer") {
		settings.HideTimer = flags.hideTimer
	}
	if cmd.Flags().Changed("opacity") {
		settings.Opacity = flags.opacity
	}
	return settings
}
