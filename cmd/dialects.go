package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var dialectsCmd = &cobra.Command{
	Use:         "dialects",
	Short:       "List the known dialects in detection order",
	Annotations: map[string]string{offline: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		for i, d := range Registry.Dialects() {
			var features []string
			if d.SupportsChangeColumnType() {
				features = append(features, "alter-type")
			}
			if d.SupportsFunctionIndexes() {
				features = append(features, "function-index")
			}
			if d.SupportsGeneratedColumns() {
				features = append(features, "generated-column")
			}
			if d.AlterForeignKeys {
				features = append(features, "alter-fk")
			}
			fmt.Printf("[%02d] %-10s %-45s clip=%d %s\n", i+1, d.Name,
				strings.Join(d.Products, " | "), d.Clip(), strings.Join(features, ","))
		}
	},
}

func init() {
	RootCmd.AddCommand(dialectsCmd)
}
