package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Show tasks that are ready to work on",
	Long: `Show open tasks with no unfinished blockers, most urgent first.

A task is ready when it is open and every task it depends on is done.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		tasks, err := store.ReadyTasks(ctx, limit)
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			if tasks == nil {
				tasks = []*types.Task{}
			}
			printJSON(tasks)
			return
		}
		if len(tasks) == 0 {
			fmt.Println("No ready tasks")
			return
		}
		for _, task := range tasks {
			fmt.Println(ui.TaskLine(task))
		}
	},
}

func init() {
	readyCmd.Flags().IntP("limit", "n", 0, "Maximum number of tasks (0 = all)")
	rootCmd.AddCommand(readyCmd)
}
