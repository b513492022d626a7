package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/types"
	"github.com/tacksdev/tacks/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate task counts",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		stats, err := store.Statistics(ctx)
		if err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(stats)
			return
		}

		if oneline, _ := cmd.Flags().GetBool("oneline"); oneline {
			fmt.Printf("%d tasks: %d open, %d in progress, %d blocked, %d done\n",
				stats.Total(),
				stats.ByStatus[types.StatusOpen],
				stats.ByStatus[types.StatusInProgress],
				stats.ByStatus[types.StatusBlocked],
				stats.ByStatus[types.StatusDone])
			return
		}

		fmt.Printf("%s  %d tasks\n\n", ui.RenderHeader("total"), stats.Total())

		fmt.Println(ui.RenderHeader("by status"))
		for _, st := range []types.Status{types.StatusOpen, types.StatusInProgress, types.StatusBlocked, types.StatusDone} {
			if n := stats.ByStatus[st]; n > 0 {
				fmt.Printf("  %-12s %d\n", st, n)
			}
		}

		fmt.Println(ui.RenderHeader("by priority"))
		for p := 0; p <= 4; p++ {
			if n := stats.ByPriority[p]; n > 0 {
				fmt.Printf("  %s  %d\n", ui.RenderPriority(p), n)
			}
		}

		if len(stats.ByTag) > 0 {
			fmt.Println(ui.RenderHeader("by tag"))
			tags := make([]string, 0, len(stats.ByTag))
			for tag := range stats.ByTag {
				tags = append(tags, tag)
			}
			sort.Strings(tags)
			for _, tag := range tags {
				fmt.Printf("  %-12s %d\n", tag, stats.ByTag[tag])
			}
		}
	},
}

func init() {
	statsCmd.Flags().Bool("oneline", false, "Single-line summary")
	rootCmd.AddCommand(statsCmd)
}
