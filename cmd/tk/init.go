package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/configfile"
	"github.com/tacksdev/tacks/internal/idgen"
	"github.com/tacksdev/tacks/internal/storage/sqlite"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the task database",
	Long: `Create the task database and record the ID prefix.

The prefix shows up in every generated ID: a prefix of "proj" yields
IDs like proj-a1b2. Re-running init on an existing database only
updates the prefix.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		prefix, _ := cmd.Flags().GetString("prefix")
		if err := idgen.ValidatePrefix(prefix); err != nil {
			fatal(err)
		}

		ctx := cmd.Context()
		path := dbPath()
		existed := sqlite.Exists(path)

		store, err := sqlite.New(ctx, path)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		if err := store.SetConfig(ctx, "prefix", prefix); err != nil {
			fatal(err)
		}

		// Seed the config file next to the database so other tools
		// (and future humans) can see the project settings.
		cfgPath := configfile.ConfigPath(path)
		cfg, err := configfile.Load(cfgPath)
		if err != nil {
			fatal(err)
		}
		cfg.Prefix = prefix
		if err := configfile.Save(cfgPath, cfg); err != nil {
			fatal(err)
		}

		if jsonOutput {
			printJSON(map[string]interface{}{
				"db":      path,
				"prefix":  prefix,
				"created": !existed,
			})
			return
		}
		if existed {
			fmt.Printf("Updated prefix to %s for existing database at %s\n", prefix, path)
		} else {
			fmt.Printf("Created database at %s with prefix %s\n", path, prefix)
		}
	},
}

func init() {
	initCmd.Flags().String("prefix", "tk", "ID prefix for this project")
	rootCmd.AddCommand(initCmd)
}
