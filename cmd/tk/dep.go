package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/ui"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependencies between tasks",
}

var depAddCmd = &cobra.Command{
	Use:   "add <child> <parent>",
	Short: "Record that child is blocked by parent",
	Long: `Record that child is blocked by parent.

The edge is rejected if it would create a cycle, duplicate an existing
edge, or make a task depend on itself.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		if err := store.AddDependency(ctx, args[0], args[1]); err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(map[string]string{"child_id": args[0], "parent_id": args[1]})
			return
		}
		fmt.Printf("%s is now blocked by %s\n", ui.RenderID(args[0]), ui.RenderID(args[1]))
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <child> <parent>",
	Short: "Remove a dependency edge",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		if err := store.RemoveDependency(ctx, args[0], args[1]); err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(map[string]string{"child_id": args[0], "parent_id": args[1]})
			return
		}
		fmt.Printf("%s is no longer blocked by %s\n", ui.RenderID(args[0]), ui.RenderID(args[1]))
	},
}

func init() {
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	rootCmd.AddCommand(depCmd)
}
