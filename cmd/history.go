package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/chartloom-cli/internal/history"
	"github.com/KaramelBytes/chartloom-cli/internal/utils"
)

var histLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse previously answered questions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent answers, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeStore, err := openHistory()
		if err != nil {
			return err
		}
		defer closeStore()
		entries, err := store.List(cmd.Context(), histLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history yet")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWHEN\tSOURCE\tCHART\tQUESTION")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
				e.ID, e.CreatedAt.Local().Format(time.DateTime), e.Source, e.Spec.ChartType,
				utils.TruncateRunes(e.Question, 48))
		}
		return tw.Flush()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a recorded answer as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[0], err)
		}
		store, closeStore, err := openHistory()
		if err != nil {
			return err
		}
		defer closeStore()
		e, err := store.Get(cmd.Context(), id)
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("no history entry %s", id)
		}
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), e, "")
	},
}

func openHistory() (history.Store, func(), error) {
	store, closeStore, err := buildHistory(currentConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	if store == nil {
		return nil, nil, errors.New("history is disabled (history_backend: none)")
	}
	return store, closeStore, nil
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyListCmd.Flags().IntVarP(&histLimit, "limit", "n", 20, "max entries to list (0 = all)")
}
