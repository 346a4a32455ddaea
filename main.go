package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-sessions/internal"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/config"
)

// main - is the entry point of the application.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "tictactoe-sessions",
		Short:        "Real-time two-player tic-tac-toe session server",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if err = app.RunApp(initLogger(conf), conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to the config file")

	return cmd
}

func defaultConfigPath() string {
	baseDir, err := os.Getwd()
	if err != nil {
		return "config.yml"
	}

	return filepath.Join(baseDir, "config.yml")
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
