package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks, most urgent first.

Done tasks are hidden unless --all or an explicit --status done is
given. Filters combine with AND.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		var filter types.TaskFilter
		if v, _ := cmd.Flags().GetString("status"); v != "" {
			st, err := types.ParseStatus(v)
			if err != nil {
				fatal(err)
			}
			filter.Status = &st
		}
		if cmd.Flags().Changed("priority") {
			p, _ := cmd.Flags().GetInt("priority")
			filter.Priority = &p
		}
		filter.Tag, _ = cmd.Flags().GetString("tag")
		filter.ParentID, _ = cmd.Flags().GetString("parent")
		filter.IncludeClosed, _ = cmd.Flags().GetBool("all")

		tasks, err := store.ListTasks(ctx, filter)
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
			fmt.Println("No tasks found")
			return
		}
		for _, task := range tasks {
			fmt.Println(ui.TaskLine(task))
		}
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().IntP("priority", "p", 2, "Filter by priority")
	listCmd.Flags().StringP("tag", "t", "", "Filter by tag (exact match)")
	listCmd.Flags().String("parent", "", "Filter by parent task")
	listCmd.Flags().BoolP("all", "a", false, "Include done tasks")
	rootCmd.AddCommand(listCmd)
}
