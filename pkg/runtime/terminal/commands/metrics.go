package commands

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/dd-tools/databook/pkg/services/engine"
)

// NewMetricsCmd lists every metric name resolvable through the statement
// accessors, the vocabulary accepted by traces and variance queries.
func NewMetricsCmd(output io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "List available statement metric names",
		RunE: func(cmd *cobra.Command, args []string) error {
			plNames := engine.PLMetricNames()
			sort.Strings(plNames)
			balanceNames := engine.BalanceMetricNames()
			sort.Strings(balanceNames)

			fmt.Fprintln(output, "P&L metrics:")
			for _, name := range plNames {
				fmt.Fprintf(output, "  %s\n", name)
			}
			fmt.Fprintln(output, "Balance metrics:")
			for _, name := range balanceNames {
				fmt.Fprintf(output, "  %s\n", name)
			}
			return nil
		},
	}
}
