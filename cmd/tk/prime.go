package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/storage/sqlite"
	"github.com/tacksdev/tacks/internal/types"
)

var primeCmd = &cobra.Command{
	Use:   "prime",
	Short: "Print a compact context summary for shells and agents",
	Long: `Print a compact summary of the current task state: counts and the
top ready tasks.

Intended for shell prompts and agent session hooks, so it exits
silently (status 0) when no database exists rather than erroring.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		if !sqlite.Exists(dbPath()) {
			return
		}
		store, err := sqlite.New(ctx, dbPath())
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		stats, err := store.Statistics(ctx)
		if err != nil {
			fatal(err)
		}
		ready, err := store.ReadyTasks(ctx, 5)
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{
				"stats": stats,
				"ready": ready,
			})
			return
		}

		fmt.Printf("tasks: %d open, %d in progress, %d done\n",
			stats.ByStatus[types.StatusOpen],
			stats.ByStatus[types.StatusInProgress],
			stats.ByStatus[types.StatusDone])
		if len(ready) > 0 {
			fmt.Println("ready:")
			for _, task := range ready {
				fmt.Printf("  %s P%d %s\n", task.ID, task.Priority, task.Title)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(primeCmd)
}
