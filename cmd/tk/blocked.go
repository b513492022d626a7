package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "Show tasks waiting on unfinished blockers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		tasks, err := store.BlockedTasks(ctx)
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
			fmt.Println("Nothing is blocked")
			return
		}
		for _, task := range tasks {
			blockers, err := store.Blockers(ctx, task.ID)
			if err != nil {
				fatal(err)
			}
			fmt.Println(ui.TaskLine(task))
			for _, b := range blockers {
				if b.Status != types.StatusDone {
					fmt.Printf("  waiting on %s\n", ui.TaskLine(b))
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(blockedCmd)
}
