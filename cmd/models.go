package cmd

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartloom-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/chartloom-cli/internal/config"
)

var (
	modelsProvider string
	syncPath       string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the model catalog and pricing",
	Example: `  chartloom models list
  chartloom models list --provider ollama
  chartloom models sync --file ./models.json`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known models",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tPROVIDER\tCONTEXT\tIN/1K\tOUT/1K")
		for _, m := range ai.CatalogFor(modelsProvider) {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%.5f\t%.5f\n", m.Name, m.Provider, m.ContextTokens, m.InputPerK, m.OutputPerK)
		}
		return tw.Flush()
	},
}

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Validate a JSON model catalog and merge it on every start",
	Long: `Validates a JSON catalog of the form {"<model>": {"Name":..,"Provider":..,"ContextTokens":..,
"InputPerK":..,"OutputPerK":..}} and stores its path as models_catalog_file so it is merged
into the built-in catalog on every start.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPath == "" {
			return fmt.Errorf("--file is required")
		}
		path, err := filepath.Abs(syncPath)
		if err != nil {
			return err
		}
		m, err := ai.LoadCatalogFromJSON(path)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			c = cfgpkg.Default()
		}
		c.ModelsCatalogFile = path
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		ai.MergeCatalog(m)
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Merged %d models from %s\n", len(m), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsSyncCmd)

	modelsListCmd.Flags().StringVar(&modelsProvider, "provider", "", "only list models of this provider")
	modelsSyncCmd.Flags().StringVar(&syncPath, "file", "", "path to JSON catalog file")
}
