package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/k1LoW/errors"
	"github.com/looptalks/bubble"
	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"
)

var (
	logFile string
	debug   bool

	logger   = slog.New(slog.DiscardHandler)
	logClose io.Closer
)

var rootCmd = &cobra.Command{
	Use:          "bubblegen",
	Short:        "bubblegen renders chat-bubble images for social posts",
	Long:         `bubblegen renders chat-bubble images for social posts and serves the submission API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd.ErrOrStderr())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logClose != nil {
			return logClose.Close()
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Debug("command failed", "error", err, "stack_traces", errors.StackTraces(err))
		if logClose != nil {
			_ = logClose.Close()
		}
		os.Exit(1)
	}
}

// setupLogger writes text logs to stderr and, with --log-file, JSON logs to
// the file as well. The result also becomes the renderer's logger.
func setupLogger(stderr io.Writer) error {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logClose = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	logger = slog.New(slogmulti.Fanout(handlers...))
	bubble.SetLogger(logger)
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logFile, "log-file", "", "", "also write JSON logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "", false, "enable debug logging")
}
