package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
	"github.com/KaramelBytes/chartloom-cli/internal/geo"
)

var (
	mapsDir  string
	mapsJSON bool
)

var mapsCmd = &cobra.Command{
	Use:   "maps [file|-]",
	Short: "List the maps an option or model reply needs and where their GeoJSON lives",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readJSONInput(firstArg(args), cmd.InOrStdin())
		if err != nil {
			return err
		}
		names := chart.CollectMapNames(chart.NormalizeAIResponse(raw).Option)
		if len(names) == 0 {
			// Accept a bare option as well as a wrapped reply.
			names = chart.CollectMapNames(raw)
		}

		dir := mapsDir
		if dir == "" {
			dir = currentConfig().MapsDir
		}
		resolved, missing := geo.Resolver{Dir: dir}.Resolve(names)
		out := cmd.OutOrStdout()
		if mapsJSON {
			return writeJSON(out, map[string]any{"mapNames": names, "resolved": resolved, "missing": missing}, "")
		}
		if len(names) == 0 {
			fmt.Fprintln(out, "No maps referenced")
			return nil
		}
		for _, n := range names {
			if p, ok := resolved[n]; ok {
				fmt.Fprintf(out, "✓ %s\t%s\n", n, p)
			} else {
				fmt.Fprintf(out, "✗ %s\tmissing (place %s.json in %s)\n", n, n, dir)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mapsCmd)
	mapsCmd.Flags().StringVar(&mapsDir, "dir", "", "GeoJSON directory (overrides maps_dir)")
	mapsCmd.Flags().BoolVar(&mapsJSON, "json", false, "print the result as JSON")
}
