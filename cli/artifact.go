package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petal-labs/pollen/store"
)

// NewArtifactCmd creates the "artifact" command group for the persisted
// invocation results.
func NewArtifactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Manage saved invocation artifacts",
	}
	cmd.PersistentFlags().String("db", "", "SQLite artifact database path (default ~/.pollen/pollen.db)")
	cmd.AddCommand(newArtifactGetCmd())
	cmd.AddCommand(newArtifactSaveCmd())
	return cmd
}

func newArtifactGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a saved artifact's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openArtifactStore(cmd)
			if err != nil {
				return exitError(exitRuntime, "%v", err)
			}
			defer func() { _ = s.Close() }()

			content, err := s.Get(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return exitError(exitUsage, "artifact %q not found", args[0])
			}
			if err != nil {
				return exitError(exitRuntime, "%v", err)
			}
			_, err = cmd.OutOrStdout().Write(content)
			return err
		},
	}
}

func newArtifactSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <file>",
		Short: "Save a file's content as an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return exitError(exitUsage, "reading %s: %v", args[0], err)
			}

			s, err := openArtifactStore(cmd)
			if err != nil {
				return exitError(exitRuntime, "%v", err)
			}
			defer func() { _ = s.Close() }()

			saved, err := s.Save(cmd.Context(), content, args[0])
			if err != nil {
				return exitError(exitRuntime, "%v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), saved.ID)
			return nil
		},
	}
}

// openArtifactStore resolves the --db flag, falling back to the default
// per-user database.
func openArtifactStore(cmd *cobra.Command) (*store.SQLiteStore, error) {
	dsn, err := cmd.Flags().GetString("db")
	if err != nil {
		return nil, err
	}
	if dsn != "" {
		return store.NewSQLiteStore(store.SQLiteStoreConfig{DSN: dsn})
	}
	return store.NewDefaultSQLiteStore()
}
