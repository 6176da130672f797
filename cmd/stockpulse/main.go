// Command stockpulse ingests store inventory spreadsheets from the command
// line or serves the HTTP API.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stockpulse/internal/app"
	"stockpulse/internal/config"
	"stockpulse/internal/infrastructure"
	"stockpulse/internal/services"
	"stockpulse/pkg/contracts"
)

// cli holds the state shared by every subcommand
type cli struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *services.InventoryService

	logLevel      string
	productsFile  string
	sizesFile     string
	mode          string
	convention    string
	suppressEmpty bool
	sheet         string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "stockpulse",
		Short: "Normalize store inventory spreadsheets",
		Long: `stockpulse reads the stock export of a retail chain, one block of
columns per store, and turns it into normalized per-store records, grouped
products and replenishment requests.

Configuration comes from stockpulse.yaml and STOCKPULSE_* variables; the
flags below override it for a single run.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&c.productsFile, "products", "", "product dictionary file (csv, xlsx or json)")
	flags.StringVar(&c.sizesFile, "sizes", "", "size dictionary file (csv, xlsx or json)")
	flags.StringVar(&c.mode, "mode", "", "aggregation mode: grouped or breakdown")
	flags.StringVar(&c.convention, "convention", "", "blank cells: unknown or zero")
	flags.BoolVar(&c.suppressEmpty, "suppress-empty", false, "drop records without stock in store or DC")
	flags.StringVar(&c.sheet, "sheet", "", "worksheet to read from xlsx files")

	root.AddCommand(
		newIngestCmd(c),
		newCompareCmd(c),
		newSweepCmd(c),
		newServeCmd(c),
		newVersionCmd(),
	)
	return root
}

// init loads configuration and builds the inventory service
func (c *cli) init(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.Logging.Level = c.logLevel
	}
	if c.productsFile != "" {
		cfg.Ingest.ProductsFile = c.productsFile
	}
	if c.sizesFile != "" {
		cfg.Ingest.SizesFile = c.sizesFile
	}
	c.cfg = cfg

	if cmd.Name() == "serve" {
		return nil
	}

	c.logger = infrastructure.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level)
	slog.SetDefault(c.logger)
	c.service, err = app.NewInventoryService(cfg, nil, nil, c.logger)
	return err
}

// params returns the per-run overrides given on the command line
func (c *cli) params(cmd *cobra.Command) (services.IngestParams, error) {
	values := map[string]string{
		"mode":       c.mode,
		"convention": c.convention,
		"sheet":      c.sheet,
	}
	if cmd.Flags().Changed("suppress-empty") {
		values["suppress_empty"] = fmt.Sprint(c.suppressEmpty)
	}
	return services.ParseIngestParams(values)
}

// openOutput returns the command's stdout for an empty path or "-"
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid --%s %q: want one of %s", name, value, strings.Join(allowed, ", "))
}
