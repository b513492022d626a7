package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/ui"
)

var commentCmd = &cobra.Command{
	Use:   "comment <id> <body>",
	Short: "Add a comment to a task",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		comment, err := store.AddComment(ctx, args[0], args[1])
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(comment)
			return
		}
		fmt.Printf("Commented on %s\n", ui.RenderID(comment.TaskID))
	},
}

func init() {
	rootCmd.AddCommand(commentCmd)
}
