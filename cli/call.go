package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/pollen/loader"
	"github.com/petal-labs/pollen/tool"
)

// NewCallCmd creates the "call" command.
func NewCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool with JSON arguments",
		Args:  cobra.ExactArgs(1),
		RunE:  runCall,
	}
	addDiscoveryFlags(cmd)
	cmd.Flags().String("args", "{}", "Arguments as a JSON object")
	cmd.Flags().Bool("save", false, "Persist the result as an artifact")
	cmd.Flags().String("db", "", "SQLite artifact database path (default ~/.pollen/pollen.db)")
	return cmd
}

func runCall(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}
	rawArgs, err := cmd.Flags().GetString("args")
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}

	var arguments map[string]any
	if err := json.Unmarshal([]byte(rawArgs), &arguments); err != nil {
		return exitError(exitUsage, "parsing --args: %v", err)
	}

	reg, _ := loader.Load(opts)
	desc, ok := reg.Get(args[0])
	if !ok {
		return exitError(exitUsage, "tool %q is not registered", args[0])
	}

	result, err := tool.Invoke(cmd.Context(), desc, arguments)
	if err != nil {
		var invErr *tool.InvocationError
		if errors.As(err, &invErr) {
			return exitError(exitTool, "%s", invErr.Error())
		}
		return exitError(exitRuntime, "%v", err)
	}

	var rendered string
	switch value := result.(type) {
	case string:
		rendered = value
	default:
		out, err := json.Marshal(value)
		if err != nil {
			return exitError(exitRuntime, "encoding result: %v", err)
		}
		rendered = string(out)
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)

	save, err := cmd.Flags().GetBool("save")
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}
	if save {
		s, err := openArtifactStore(cmd)
		if err != nil {
			return exitError(exitRuntime, "%v", err)
		}
		defer func() { _ = s.Close() }()

		saved, err := s.Save(cmd.Context(), []byte(rendered), args[0]+".txt")
		if err != nil {
			return exitError(exitRuntime, "%v", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "saved artifact %s\n", saved.ID)
	}
	return nil
}
