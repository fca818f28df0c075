package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"mic-recorder/config"
)

var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "recorder",
		Short:         "Record a fixed-length clip from the microphone and hand it to a host",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return flags.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if flags.logFile != nil {
				return flags.logFile.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.yaml", "path to config file")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "override log.level")

	cmd.AddCommand(
		newCaptureCmd(&flags),
		newServeCmd(&flags),
		newVersionCmd(),
	)
	return cmd
}

func (f *rootFlags) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(f.configPath)
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "loading config: %v\n", err)
		return err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}

	f.cfg = cfg
	f.logger, f.logFile = setupLogger(cfg.Log, cmd.ErrOrStderr())
	slog.SetDefault(f.logger)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "recorder version %s\n", version)
		},
	}
}

// setupLogger logs to stderr, or to a rotated file when one is configured.
// Stdout is reserved for the host value.
func setupLogger(cfg config.LogConfig, stderr io.Writer) (*slog.Logger, io.Closer) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	out := stderr
	var closer io.Closer
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out, closer = rotating, rotating
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer
}
