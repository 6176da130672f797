package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func newCompareCmd(c *cli) *cobra.Command {
	var sku string

	cmd := &cobra.Command{
		Use:   "compare FILE --sku SKU",
		Short: "Show one product's stock across stores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := c.params(cmd)
			if err != nil {
				return err
			}

			result, err := c.service.IngestFile(cmd.Context(), args[0], params)
			if err != nil {
				return err
			}

			rows, err := c.service.Compare(cmd.Context(), result, sku)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rows)
		},
	}

	cmd.Flags().StringVar(&sku, "sku", "", "product SKU; a size suffix is ignored")
	_ = cmd.MarkFlagRequired("sku")
	return cmd
}
