package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task in detail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		id := args[0]
		task, err := store.GetTask(ctx, id)
		if err != nil {
			fatal(err)
		}
		blockers, err := store.Blockers(ctx, id)
		if err != nil {
			fatal(err)
		}
		dependents, err := store.Dependents(ctx, id)
		if err != nil {
			fatal(err)
		}
		children, err := store.ListChildren(ctx, id)
		if err != nil {
			fatal(err)
		}
		comments, err := store.Comments(ctx, id)
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{
				"task":       task,
				"blockers":   blockers,
				"dependents": dependents,
				"children":   children,
				"comments":   comments,
			})
			return
		}

		fmt.Println(ui.TaskLine(task))
		if task.Description != "" {
			fmt.Printf("\n%s\n", task.Description)
		}
		if task.Notes != "" {
			fmt.Printf("\n%s\n%s\n", ui.RenderHeader("notes"), task.Notes)
		}
		if task.ParentID != "" {
			fmt.Printf("\nParent: %s\n", ui.RenderID(task.ParentID))
		}
		if task.CloseReason != "" {
			fmt.Printf("Closed as: %s\n", task.CloseReason)
		}
		if len(blockers) > 0 {
			fmt.Printf("\n%s\n", ui.RenderHeader("blocked by"))
			for _, b := range blockers {
				fmt.Println("  " + ui.TaskLine(b))
			}
		}
		if len(dependents) > 0 {
			fmt.Printf("\n%s\n", ui.RenderHeader("blocks"))
			for _, d := range dependents {
				fmt.Println("  " + ui.TaskLine(d))
			}
		}
		if len(children) > 0 {
			fmt.Printf("\n%s\n", ui.RenderHeader("children"))
			for _, c := range children {
				fmt.Println("  " + ui.TaskLine(c))
			}
		}
		if len(comments) > 0 {
			fmt.Printf("\n%s\n", ui.RenderHeader("comments"))
			for _, c := range comments {
				fmt.Printf("  %s %s\n", ui.RenderMuted(c.CreatedAt.Format("2006-01-02 15:04")), c.Body)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
