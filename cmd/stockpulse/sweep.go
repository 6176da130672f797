package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"stockpulse/pkg/contracts/domain"
	"stockpulse/internal/exporter"
)

func newSweepCmd(c *cli) *cobra.Command {
	var store, format, out string

	cmd := &cobra.Command{
		Use:   "sweep FILE",
		Short: "List the sizes stores should request from the DC",
		Long: `Lists every size that is missing in a store while the DC holds stock.

Examples:
  stockpulse sweep stock.xlsx --store Norte
  stockpulse sweep stock.xlsx --format xlsx --out requests.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := oneOf("format", format, "json", "xlsx"); err != nil {
				return err
			}
			if format == "xlsx" && (out == "" || out == "-") {
				return errors.New("--format xlsx needs --out")
			}

			params, err := c.params(cmd)
			if err != nil {
				return err
			}

			result, err := c.service.IngestFile(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			requests := c.service.Sweep(cmd.Context(), result, store)
			if format == "xlsx" {
				return exporter.SaveRequestWorkbook(out, requests, result.Records)
			}

			w, closeOut, err := openOutput(cmd, out)
			if err != nil {
				return err
			}
			if requests == nil {
				requests = []domain.ReplenishmentRequest{}
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			err = enc.Encode(requests)
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&store, "store", "", "only requests for this store (name or ID)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
