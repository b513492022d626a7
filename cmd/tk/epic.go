package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var epicCmd = &cobra.Command{
	Use:   "epic",
	Short: "Show epic progress",
	Long:  `Show completion progress for every epic-tagged task.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		progress, err := store.EpicProgress(ctx)
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			if progress == nil {
				progress = []*types.EpicProgress{}
			}
			printJSON(progress)
			return
		}
		if len(progress) == 0 {
			fmt.Println("No epics")
			return
		}
		for _, p := range progress {
			fmt.Printf("%s %s %d/%d  %s\n",
				ui.RenderID(p.Epic.ID),
				ui.ProgressBar(p.DoneChildren, p.TotalChildren, 10),
				p.DoneChildren, p.TotalChildren,
				p.Epic.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(epicCmd)
}
