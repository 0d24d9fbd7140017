package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	// Register the bundled sample tools.
	_ "github.com/petal-labs/pollen/builtins"
	"github.com/petal-labs/pollen/cli"
	"github.com/petal-labs/pollen/otelobs"
	"github.com/petal-labs/pollen/tool"
)

// Set via ldflags at build time.
var version = "dev"

var otelShutdown func(context.Context) error

func main() {
	cli.InitLogging()

	err := rootCmd.Execute()
	if otelShutdown != nil {
		_ = otelShutdown(context.Background())
	}
	if err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pollen",
	Short: "Pollen tool registry CLI",
	Long:  "Pollen — discover, inspect, and invoke agent tools from plugin manifest modules.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, err := cmd.Flags().GetString("otlp-endpoint")
		if err != nil || endpoint == "" {
			return err
		}
		shutdown, err := otelobs.Init(cmd.Context(), otelobs.Config{
			Endpoint: endpoint,
			Insecure: true,
		})
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		otelShutdown = shutdown

		observer, err := otelobs.NewObserver(
			otelapi.GetMeterProvider().Meter("pollen/tool"),
			otelapi.GetTracerProvider().Tracer("pollen/tool"),
		)
		if err != nil {
			return fmt.Errorf("initializing tool observer: %w", err)
		}
		tool.SetObserver(observer)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP trace endpoint (host:port); empty disables telemetry")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("pollen version %s\n", version))

	rootCmd.AddCommand(cli.NewListCmd())
	rootCmd.AddCommand(cli.NewDescribeCmd())
	rootCmd.AddCommand(cli.NewCallCmd())
	rootCmd.AddCommand(cli.NewWatchCmd())
	rootCmd.AddCommand(cli.NewArtifactCmd())
}
