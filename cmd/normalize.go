package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
)

var normOutput string

var normalizeCmd = &cobra.Command{
	Use:   "normalize [file|-]",
	Short: "Normalize a model reply or ECharts option JSON into a chart spec",
	Long: `Reads a JSON object (a model reply with option/config/chartType/insight/reason fields)
from a file or stdin, canonicalizes series type aliases, injects the structural defaults the
renderer needs and prints the resulting chart spec with the map names it references.`,
	Example: `  echo '{"option":{"series":[{"type":"column"}]}}' | chartloom normalize
  chartloom normalize reply.json --output spec.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readJSONInput(firstArg(args), cmd.InOrStdin())
		if err != nil {
			return err
		}
		spec := chart.NormalizeAIResponse(raw)
		return writeJSON(cmd.OutOrStdout(), struct {
			chart.ChartSpec
			MapNames []string `json:"mapNames"`
		}{spec, chart.CollectMapNames(spec.Option)}, normOutput)
	},
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVarP(&normOutput, "output", "o", "", "also write the spec JSON to this path")
}
