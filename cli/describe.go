package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petal-labs/pollen/loader"
)

// NewDescribeCmd creates the "describe" command.
func NewDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <tool>",
		Short: "Print a tool's definition and attributes as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runDescribe,
	}
	addDiscoveryFlags(cmd)
	return cmd
}

func runDescribe(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}

	reg, _ := loader.Load(opts)
	desc, ok := reg.Get(args[0])
	if !ok {
		return exitError(exitUsage, "tool %q is not registered", args[0])
	}

	out, err := json.MarshalIndent(map[string]any{
		"definition": desc.Definition,
		"attributes": desc.Attributes,
	}, "", "  ")
	if err != nil {
		return exitError(exitRuntime, "encoding descriptor: %v", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
