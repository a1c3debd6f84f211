package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartloom-cli/internal/analysis"
	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
	"github.com/KaramelBytes/chartloom-cli/internal/loader"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
)

var (
	colSheet      string
	colJSON       bool
	colListSheets bool
	colStats      bool
)

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "Show the inferred column types of a CSV/XLSX file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if colListSheets {
			sheets, err := loader.Sheets(args[0])
			if err != nil {
				return err
			}
			for _, s := range sheets {
				fmt.Fprintln(out, s)
			}
			return nil
		}
		ds, err := loader.LoadWithOptions(args[0], loader.Options{SheetName: colSheet})
		if err != nil {
			return fmt.Errorf("load %s: %w", args[0], err)
		}
		if colStats {
			report := analysis.Profile(ds, analysis.DefaultOptions())
			report.Name = filepath.Base(args[0])
			if colJSON {
				return writeJSON(out, report, "")
			}
			fmt.Fprint(out, report.Markdown())
			return nil
		}
		if colJSON {
			return writeJSON(out, map[string]any{"rows": len(ds.Rows), "columns": ds.Columns}, "")
		}
		fmt.Fprintf(out, "%d rows, %d columns\n", len(ds.Rows), len(ds.Columns))
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "COLUMN\tTYPE\tSAMPLE")
		for _, c := range ds.Columns {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Key, c.Type, sample(ds.Rows, c.Key))
		}
		return tw.Flush()
	},
}

// sample returns the first non-empty value of key, shortened for display.
func sample(rows []dataset.Row, key string) string {
	for _, r := range rows {
		if s := cast.ToString(r[key]); s != "" {
			return utils.TruncateRunes(s, 32)
		}
	}
	return ""
}

func init() {
	rootCmd.AddCommand(columnsCmd)
	columnsCmd.Flags().StringVar(&colSheet, "sheet", "", "sheet name for XLSX files (default: first sheet)")
	columnsCmd.Flags().BoolVar(&colJSON, "json", false, "print columns as JSON")
	columnsCmd.Flags().BoolVar(&colStats, "stats", false, "profile each column (counts, numeric stats, outliers, top values)")
	columnsCmd.Flags().BoolVar(&colListSheets, "sheets", false, "list the sheets of an XLSX file instead")
}
