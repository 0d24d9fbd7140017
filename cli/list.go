package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/petal-labs/pollen/loader"
)

// NewListCmd creates the "list" command.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tools discovered from the plugin directory",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
	addDiscoveryFlags(cmd)
	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}

	reg, report := loader.Load(opts)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tASYNC\tDESCRIPTION")
	for _, desc := range reg.All() {
		fmt.Fprintf(w, "%s\t%t\t%s\n",
			desc.Name(), desc.IsAsync(), desc.Definition.Function.Description)
	}
	if err := w.Flush(); err != nil {
		return exitError(exitRuntime, "writing output: %v", err)
	}

	for _, failure := range report.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", failure.Error())
	}
	return nil
}
