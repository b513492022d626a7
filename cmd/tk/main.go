// Command tk is a local task tracker with hierarchical IDs, dependency
// tracking, and ready-work detection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tacksdev/tacks/internal/configfile"
	"github.com/tacksdev/tacks/internal/storage/sqlite"
)

var (
	dbFlag     string
	jsonOutput bool
	actorFlag  string

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "tk",
	Short: "Track tasks with dependencies and hierarchies",
	Long: `tk is a local, single-user task tracker.

Tasks live in a SQLite store (default .tacks/tacks.db, override with
--db or TACKS_DB). Tasks can form hierarchies (tk-a1b2.1), block each
other through dependencies, and carry tags, comments, and priorities.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "Path to database file (env: TACKS_DB)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "Actor name for claim operations")

	_ = viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindEnv("db", configfile.EnvDB)
}

// dbPath resolves the store path from flag, env, then default.
func dbPath() string {
	return configfile.DBPath(viper.GetString("db"))
}

// openStore opens an existing store. Commands other than init must not
// create a database as a side effect of a typo'd path.
func openStore(ctx context.Context) (*sqlite.Store, error) {
	path := dbPath()
	if !sqlite.Exists(path) {
		return nil, fmt.Errorf("no database at %s (run 'tk init' first)", path)
	}
	return sqlite.New(ctx, path)
}

// resolveActor picks the assignee for claim: flag, env, config file,
// then the OS user.
func resolveActor() string {
	if actorFlag != "" {
		return actorFlag
	}
	if env := os.Getenv("TACKS_ACTOR"); env != "" {
		return env
	}
	if cfg, err := configfile.Load(configfile.ConfigPath(dbPath())); err == nil && cfg.Actor != "" {
		return cfg.Actor
	}
	return os.Getenv("USER")
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// fatal reports the error and exits non-zero, honoring --json.
func fatal(err error) {
	if jsonOutput {
		printJSON(map[string]string{"error": err.Error()})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	rootCancel()
	os.Exit(1)
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	if err := rootCmd.ExecuteContext(rootCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
