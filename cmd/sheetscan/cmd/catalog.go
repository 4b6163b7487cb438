package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// catalogCmd prints the configured catalog.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List accepted item names",
	Long: `Print the item names rows are matched against, in configuration order.
Matching is exact and case-sensitive after trimming whitespace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := GetConfig().LoadCatalog()
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			return enc.Encode(struct {
				Items []string `json:"items"`
				Count int      `json:"count"`
			}{cat.Items(), cat.Len()})
		}

		for _, item := range cat.Items() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), item)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().Bool("json", false, "print as JSON")
}
