package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartloom-cli/internal/advisor"
	"github.com/KaramelBytes/chartloom-cli/internal/geo"
	"github.com/KaramelBytes/chartloom-cli/internal/loader"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
)

var (
	askOffline   bool
	askStream    bool
	askSheet     string
	askOutput    string
	askNoHistory bool
	askJSON      bool
)

var askCmd = &cobra.Command{
	Use:   "ask <file> <question...>",
	Short: "Suggest a chart for a CSV/XLSX file and a question",
	Example: `  chartloom ask sales.csv "which region sells the most?"
  chartloom ask report.xlsx --sheet Q3 "revenue over time" --output chart.json
  chartloom ask sales.csv --offline "share by product"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		question := strings.TrimSpace(strings.Join(args[1:], " "))
		ds, err := loader.LoadWithOptions(path, loader.Options{SheetName: askSheet})
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}

		c := currentConfig()
		stream := askStream || c.Stream
		errOut := cmd.ErrOrStderr()
		opts := advisorOptions{Offline: askOffline, Stream: stream, NoHistory: askNoHistory}
		if stream && !askJSON {
			opts.OnDelta = func(s string) { fmt.Fprint(errOut, s) }
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		a, closeAll, err := buildAdvisor(ctx, c, opts)
		if err != nil {
			return err
		}
		defer closeAll()

		if stream && !askJSON {
			fmt.Fprintln(errOut, "(streaming)")
		}
		res, err := a.Suggest(advisor.WithFile(ctx, path), ds, question)
		if err != nil {
			return err
		}
		if stream && !askJSON {
			fmt.Fprintln(errOut)
		}

		out := cmd.OutOrStdout()
		if askJSON {
			return writeJSON(out, res, askOutput)
		}
		printResult(out, res, geo.Resolver{Dir: c.MapsDir})
		if askOutput != "" {
			b, err := utils.PrettyJSON(res.Spec)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(askOutput, append(b, '\n')); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote chart spec to %s\n", askOutput)
		}
		return nil
	},
}

func printResult(w io.Writer, res *advisor.Result, maps geo.Resolver) {
	fmt.Fprintf(w, "Chart: %s (source: %s)\n", res.Spec.ChartType, res.Source)
	if res.FallbackReason != "" {
		fmt.Fprintf(w, "⚠ Fell back to the local heuristic: %s\n", res.FallbackReason)
		if res.Error != "" {
			fmt.Fprintf(w, "  cause: %s\n", res.Error)
		}
	}
	if res.Spec.Insight != "" {
		fmt.Fprintf(w, "Insight: %s\n", res.Spec.Insight)
	}
	if res.Spec.Reason != "" {
		fmt.Fprintf(w, "Reason: %s\n", res.Spec.Reason)
	}
	if len(res.MapNames) > 0 {
		_, missing := maps.Resolve(res.MapNames)
		fmt.Fprintf(w, "Maps: %s\n", strings.Join(res.MapNames, ", "))
		for _, m := range missing {
			fmt.Fprintf(w, "⚠ No GeoJSON for map %q in %s\n", m, maps.Dir)
		}
	}
	if res.HistoryID != "" {
		fmt.Fprintf(w, "History ID: %s\n", res.HistoryID)
	}
	if b, err := utils.PrettyJSON(res.Spec.Option); err == nil {
		fmt.Fprintln(w, "\n=== ECharts option ===")
		fmt.Fprintln(w, string(b))
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolVar(&askOffline, "offline", false, "skip the model and use the local heuristic")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "stream the model reply to stderr")
	askCmd.Flags().StringVar(&askSheet, "sheet", "", "sheet name for XLSX files (default: first sheet)")
	askCmd.Flags().StringVarP(&askOutput, "output", "o", "", "write the chart spec JSON to this path")
	askCmd.Flags().BoolVar(&askNoHistory, "no-history", false, "do not record this answer in history")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
}
