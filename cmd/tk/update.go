package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update task fields",
	Long: `Update fields of an existing task.

--claim assigns the task to you (see --actor / TACKS_ACTOR) and moves
it to in_progress in one step. --add-tags / --remove-tags edit the tag
set without replacing it.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		id := args[0]
		claim, _ := cmd.Flags().GetBool("claim")

		updates := make(map[string]interface{})
		if cmd.Flags().Changed("title") {
			updates["title"], _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("description") {
			updates["description"], _ = cmd.Flags().GetString("description")
		}
		if cmd.Flags().Changed("status") {
			updates["status"], _ = cmd.Flags().GetString("status")
		}
		if cmd.Flags().Changed("priority") {
			updates["priority"], _ = cmd.Flags().GetInt("priority")
		}
		if cmd.Flags().Changed("assignee") {
			updates["assignee"], _ = cmd.Flags().GetString("assignee")
		}
		if cmd.Flags().Changed("notes") {
			updates["notes"], _ = cmd.Flags().GetString("notes")
		}

		addTags, _ := cmd.Flags().GetStringSlice("add-tags")
		removeTags, _ := cmd.Flags().GetStringSlice("remove-tags")
		if len(addTags) > 0 || len(removeTags) > 0 {
			current, err := store.GetTask(ctx, id)
			if err != nil {
				fatal(err)
			}
			updates["tags"] = editTags(current.Tags, addTags, removeTags)
		}

		if len(updates) == 0 && !claim {
			fatal(fmt.Errorf("nothing to update: pass at least one field flag or --claim"))
		}

		var task *types.Task
		if len(updates) > 0 {
			task, err = store.UpdateTask(ctx, id, updates)
			if err != nil {
				fatal(err)
			}
		}
		if claim {
			task, err = store.ClaimTask(ctx, id, resolveActor())
			if err != nil {
				fatal(err)
			}
		}

		if jsonOutput {
			printJSON(task)
			return
		}
		fmt.Printf("Updated %s\n", ui.TaskLine(task))
	},
}

// editTags applies additions then removals to a tag set.
func editTags(current, add, remove []string) []string {
	tags := append(append([]string{}, current...), add...)
	drop := make(map[string]bool, len(remove))
	for _, t := range remove {
		drop[t] = true
	}
	var out []string
	for _, t := range types.CanonicalTags(tags) {
		if !drop[t] {
			out = append(out, t)
		}
	}
	return out
}

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("status", "s", "", "New status")
	updateCmd.Flags().IntP("priority", "p", 2, "New priority")
	updateCmd.Flags().String("assignee", "", "New assignee")
	updateCmd.Flags().String("notes", "", "Working notes (overwrites previous notes)")
	updateCmd.Flags().StringSlice("add-tags", nil, "Tags to add")
	updateCmd.Flags().StringSlice("remove-tags", nil, "Tags to remove")
	updateCmd.Flags().Bool("claim", false, "Assign to yourself and start work")
	rootCmd.AddCommand(updateCmd)
}
