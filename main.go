package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nstehr/grimoire/config"
)

const banner = `
  ▄████  ██▀███   ██▓ ███▄ ▄███▓ ▒█████   ██▓ ██▀███  ▓█████
 ██▒ ▀█▒▓██ ▒ ██▒▓██▒▓██▒▀█▀ ██▒▒██▒  ██▒▓██▒▓██ ▒ ██▒▓█   ▀
▒██░▄▄▄░▓██ ░▄█ ▒▒██▒▓██    ▓██░▒██░  ██▒▒██▒▓██ ░▄█ ▒▒███
░▓█  ██▓▒██▀▀█▄  ░██░▒██    ▒██ ▒██   ██░░██░▒██▀▀█▄  ▒▓█  ▄
░▒▓███▀▒░██▓ ▒██▒░██░▒██▒   ░██▒░ ████▓▒░░██░░██▓ ▒██▒░▒████▒

Warlock Rotation Engine`

var (
	logLevel   string
	configPath string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grimoire",
		Short:         "Warlock combat rotation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	root.PersistentFlags().StringVar(&configPath, "config", "", "settings YAML file (defaults plus GRIMOIRE_* env when empty)")

	root.AddCommand(newServeCmd(), newSimulateCmd(), newRulesCmd())
	return root
}

// loadSettings reads --config and logs every value that was reset to its
// default.
func loadSettings() (config.Settings, error) {
	s, violations, err := config.Load(configPath)
	if err != nil {
		return config.Settings{}, err
	}
	config.Report(violations)
	return s, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("grimoire failed", "error", err)
		os.Exit(1)
	}
}
