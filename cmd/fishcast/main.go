// Package main is the FishCast operator CLI.
//
// Commands:
//
//	fishcast decide    generate a decision and print it as JSON
//	fishcast validate  load and check the rule catalogue
//	fishcast version   print build metadata
//
// Exit codes: 0 success, 1 runtime failure, 2 invalid configuration.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"fishcast/internal/config"
	"fishcast/internal/types"
)

const (
	exitFailure = 1
	exitConfig  = 2
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

// newLogger writes JSON logs to stderr so stdout carries only the document.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fishcast",
		Short:         "Istanbul shore fishing decision engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDecideCmd(), newValidateCmd(), newVersionCmd())
	return root
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var cfgErr *config.ConfigError
	if errors.As(err, &cfgErr) {
		return exitConfig
	}
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Code.Class() == types.ClassConfig {
		return exitConfig
	}
	return exitFailure
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fishcast:", err)
		os.Exit(exitCode(err))
	}
}
