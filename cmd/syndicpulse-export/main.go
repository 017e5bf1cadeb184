package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"syndicpulse/internal/cli"
)

func main() {
	cli.LoadEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	x := &exporter{}
	err := newRootCmd(x).ExecuteContext(ctx)
	if cerr := x.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(x *exporter) *cobra.Command {
	root := &cobra.Command{
		Use:   "syndicpulse-export",
		Short: "Export building financial reports from the ledger",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return x.open(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&x.backend, "backend", "", "ledger backend (memory or sqlite), defaults to DATA_BACKEND")
	root.PersistentFlags().StringVar(&x.reference, "month", "", "reference month YYYY-MM, defaults to BILLING_REFERENCE_MONTH")

	root.AddCommand(
		newBuildingsCmd(x),
		newCSVCmd(x),
		newPrintCmd(x),
		newScreenCmd(x),
	)
	return root
}
