package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petal-labs/pollen/loader"
	"github.com/petal-labs/pollen/tool"
)

// NewWatchCmd creates the "watch" command: rebuild the registry on a cron
// schedule and report each reload until interrupted.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the registry on a cron schedule",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	addDiscoveryFlags(cmd)
	cmd.Flags().String("schedule", "*/5 * * * *", "Five-field UTC cron expression")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}
	schedule, err := cmd.Flags().GetString("schedule")
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}

	refresher, err := loader.NewRefresher(loader.RefresherConfig{
		Schedule: schedule,
		Options:  opts,
		OnReload: func(reg *tool.Registry, report loader.Report) {
			fmt.Fprintf(cmd.OutOrStdout(), "registry rebuilt: %d tools from %d modules (%d failures)\n",
				reg.Len(), len(report.Modules), len(report.Failures))
			for _, failure := range report.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", failure.Error())
			}
		},
	})
	if err != nil {
		return exitError(exitUsage, "%s", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := refresher.Start(ctx); err != nil {
		return exitError(exitRuntime, "%v", err)
	}
	<-ctx.Done()
	return refresher.Stop(cmd.Context())
}
