// Package cli implements the pollen command-line interface: listing,
// describing, and calling tools discovered from a plugin directory.
package cli

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petal-labs/pollen/loader"
)

// InitLogging installs the process-wide JSON logger. LOG_LEVEL=debug raises
// verbosity.
func InitLogging() {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// loadOptions resolves the shared discovery flags into loader options.
func loadOptions(cmd *cobra.Command) (loader.Options, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return loader.Options{}, err
	}
	modules, err := cmd.Flags().GetStringSlice("module")
	if err != nil {
		return loader.Options{}, err
	}
	noBuiltins, err := cmd.Flags().GetBool("no-builtins")
	if err != nil {
		return loader.Options{}, err
	}

	opts := loader.Options{Dir: dir, SkipRegistered: noBuiltins}
	if cmd.Flags().Changed("module") {
		opts.Filter = modules
	}
	return opts, nil
}

func addDiscoveryFlags(cmd *cobra.Command) {
	cmd.Flags().String("dir", "", "Plugin manifest directory")
	cmd.Flags().StringSlice("module", nil, "Restrict loading to the named modules (repeatable)")
	cmd.Flags().Bool("no-builtins", false, "Exclude in-process registered modules")
}
