package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a task",
	Long: `Close a task with a reason: done, duplicate, absorbed, stale,
or superseded.

Closing a task whose children are not all done fails unless --force is
given.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		reason, _ := cmd.Flags().GetString("reason")
		comment, _ := cmd.Flags().GetString("comment")
		force, _ := cmd.Flags().GetBool("force")

		task, err := store.CloseTask(ctx, args[0], types.CloseReason(reason), comment, force)
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(task)
			return
		}
		fmt.Printf("Closed %s as %s\n", ui.RenderID(task.ID), task.CloseReason)
	},
}

func init() {
	closeCmd.Flags().StringP("reason", "r", "done", "Close reason")
	closeCmd.Flags().StringP("comment", "m", "", "Closing comment")
	closeCmd.Flags().BoolP("force", "f", false, "Close even with open children")
	rootCmd.AddCommand(closeCmd)
}
