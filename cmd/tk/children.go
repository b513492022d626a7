package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var childrenCmd = &cobra.Command{
	Use:   "children <id>",
	Short: "List the direct subtasks of a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		children, err := store.ListChildren(ctx, args[0])
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			if children == nil {
				children = []*types.Task{}
			}
			printJSON(children)
			return
		}
		if len(children) == 0 {
			fmt.Println("No children")
			return
		}
		for _, task := range children {
			fmt.Println(ui.TaskLine(task))
		}
	},
}

func init() {
	rootCmd.AddCommand(childrenCmd)
}
