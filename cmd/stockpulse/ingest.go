package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stockpulse/internal/exporter"
	"stockpulse/internal/files"
	"stockpulse/internal/infrastructure"
	"stockpulse/internal/services"
)

type ingestOptions struct {
	format   string
	view     string
	out      string
	parallel int
}

func newIngestCmd(c *cli) *cobra.Command {
	opts := &ingestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest FILE|DIR...",
		Short: "Normalize one or more inventory exports",
		Long: `Ingests each file (directories are scanned for xlsx and csv exports)
concurrently and prints the results in argument order.

Examples:
  stockpulse ingest stock.xlsx
  stockpulse ingest --mode breakdown --format csv --out products.csv exports/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIngest(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or csv")
	cmd.Flags().StringVar(&opts.view, "view", "products", "csv rows: products or records")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 4, "files ingested at once")
	return cmd
}

func (c *cli) runIngest(cmd *cobra.Command, args []string, opts *ingestOptions) error {
	if err := oneOf("format", opts.format, "json", "csv"); err != nil {
		return err
	}
	if err := oneOf("view", opts.view, "products", "records"); err != nil {
		return err
	}

	params, err := c.params(cmd)
	if err != nil {
		return err
	}

	paths, err := expandInputs(args)
	if err != nil {
		return err
	}

	results := make([]*services.IngestResult, len(paths))
	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(opts.parallel, 1))
	for i, path := range paths {
		g.Go(func() error {
			fileCtx := infrastructure.EnsureTraceID(ctx)
			result, err := c.service.IngestFile(fileCtx, path, params)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result
			infrastructure.LoggerFromContext(fileCtx).Info("file ingested",
				slog.String("path", path),
				slog.Int("records", len(result.Records)),
				slog.Int("products", len(result.Products)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w, closeOut, err := openOutput(cmd, opts.out)
	if err != nil {
		return err
	}

	if opts.format == "csv" {
		err = writeResultsCSV(w, results, opts.view)
	} else {
		err = writeResultsJSON(w, results)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

// expandInputs replaces directories with the inventory files they contain
func expandInputs(args []string) ([]string, error) {
	discovery := files.NewDiscovery("")

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		found, err := discovery.FindInventoryFiles(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no inventory files in %s", arg)
		}
		for _, f := range found {
			paths = append(paths, f.Path)
		}
	}
	return paths, nil
}

// writeResultsJSON prints one object for a single result and an array otherwise
func writeResultsJSON(w io.Writer, results []*services.IngestResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func writeResultsCSV(w io.Writer, results []*services.IngestResult, view string) error {
	options := exporter.WriteOptions{Headers: exporter.ProductHeaders, BOMPrefix: true}
	if view == "records" {
		options.Headers = exporter.RecordHeaders
	}
	for _, r := range results {
		if view == "records" {
			options.Records = append(options.Records, exporter.RecordRows(r.Records)...)
		} else {
			options.Records = append(options.Records, exporter.ProductRows(r.Products)...)
		}
	}
	return exporter.WriteTo(w, options)
}
