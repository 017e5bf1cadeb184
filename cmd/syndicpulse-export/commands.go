package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"syndicpulse/internal/backend"
	"syndicpulse/internal/config"
	applog "syndicpulse/internal/log"
	"syndicpulse/internal/render"
	"syndicpulse/internal/services"
)

// exporter holds the ledger opened for one command run.
type exporter struct {
	backend   string
	reference string

	cleanup backend.CleanupFunc
	store   services.ReportSource
	reports *services.ReportService
	logger  *applog.Logger
}

func (x *exporter) open(ctx context.Context) error {
	cfg := config.Load()
	if x.backend != "" {
		cfg.DataBackend = x.backend
	}
	if x.reference != "" {
		cfg.ReferenceMonth = x.reference
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Logs go to stderr so exports can be piped from stdout.
	x.logger = applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentExport,
		Output:    os.Stderr,
	})

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(x.logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	x.cleanup = result.Cleanup
	x.store = result.Store
	x.reports = services.NewReportService(services.ReportDeps{
		Source:    result.Store,
		Reference: backendCfg.ReferenceMonth,
		AppName:   cfg.AppName,
		Currency:  cfg.Currency,
		Logger:    x.logger,
	})
	return nil
}

func (x *exporter) close() error {
	if x.cleanup == nil {
		return nil
	}
	cleanup := x.cleanup
	x.cleanup = nil
	return cleanup()
}

func newBuildingsCmd(x *exporter) *cobra.Command {
	return &cobra.Command{
		Use:   "buildings",
		Short: "List the buildings of the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			buildings, err := x.store.ListBuildings(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNOM\tVILLE\tLOTS")
			for _, b := range buildings {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", b.ID, b.Name, b.City, b.TotalUnits)
			}
			return tw.Flush()
		},
	}
}

// fileExport is shared by the csv and print commands: both write a file
// named after the report unless --out says otherwise ("-" is stdout).
type fileExport struct {
	out string
	dir string
}

func (f *fileExport) flags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", `output file, "-" for stdout (default: export filename)`)
	cmd.Flags().StringVar(&f.dir, "dir", ".", "directory for the default export filename")
}

// write renders into a temporary file, then renames it to the export name
// once known.
func (f *fileExport) write(cmd *cobra.Command, render func(io.Writer) (string, error)) error {
	if f.out == "-" {
		_, err := render(cmd.OutOrStdout())
		return err
	}

	tmp, err := os.CreateTemp(f.dir, ".syndicpulse-export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	name, err := render(tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	target := f.out
	if target == "" {
		target = filepath.Join(f.dir, name)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), target)
	return nil
}

func newCSVCmd(x *exporter) *cobra.Command {
	f := &fileExport{}
	cmd := &cobra.Command{
		Use:   "csv BUILDING_ID",
		Short: "Write the spreadsheet (CSV) export of a building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.write(cmd, func(w io.Writer) (string, error) {
				return x.reports.ExportCSV(cmd.Context(), args[0], w)
			})
		},
	}
	f.flags(cmd)
	return cmd
}

func newPrintCmd(x *exporter) *cobra.Command {
	f := &fileExport{}
	var autoPrint bool
	cmd := &cobra.Command{
		Use:   "print BUILDING_ID",
		Short: "Write the printable HTML report of a building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.write(cmd, func(w io.Writer) (string, error) {
				return x.reports.ExportPrint(cmd.Context(), args[0], w, render.PrintOptions{AutoPrint: autoPrint})
			})
		},
	}
	f.flags(cmd)
	cmd.Flags().BoolVar(&autoPrint, "autoprint", false, "open the print dialog when the document loads")
	return cmd
}

func newScreenCmd(x *exporter) *cobra.Command {
	return &cobra.Command{
		Use:   "screen BUILDING_ID",
		Short: "Show the report of a building as terminal tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := x.reports.ExportScreen(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render.WriteTerminal(cmd.OutOrStdout(), v)
		},
	}
}
