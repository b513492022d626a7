package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new task",
	Long: `Create a new task.

With --parent the task becomes a subtask: its ID is the parent's ID
plus a numeric suffix (tk-a1b2.1), and the parent gains the epic tag.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		draft := types.Draft{Title: args[0]}
		if cmd.Flags().Changed("priority") {
			p, _ := cmd.Flags().GetInt("priority")
			draft.Priority = &p
		}
		draft.Description, _ = cmd.Flags().GetString("description")
		draft.ParentID, _ = cmd.Flags().GetString("parent")
		if tags, _ := cmd.Flags().GetString("tags"); tags != "" {
			draft.Tags = strings.Split(tags, ",")
		}

		task, err := store.CreateTask(ctx, draft)
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(task)
			return
		}
		fmt.Printf("Created %s\n", ui.TaskLine(task))
	},
}

func init() {
	createCmd.Flags().StringP("description", "d", "", "Task description")
	createCmd.Flags().IntP("priority", "p", 2, "Priority 0 (critical) to 4 (backlog)")
	createCmd.Flags().String("parent", "", "Parent task ID (makes this a subtask)")
	createCmd.Flags().StringP("tags", "t", "", "Comma-separated tags")
	rootCmd.AddCommand(createCmd)
}
