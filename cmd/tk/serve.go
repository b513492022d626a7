package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tacksdev/tacks/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and dashboard",
	Long: `Serve the JSON API and a minimal HTML dashboard on localhost.

The server is single-user like the CLI: no auth, intended for loopback
use only.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			fatal(err)
		}
		defer store.Close()

		addr, _ := cmd.Flags().GetString("addr")
		srv := &http.Server{
			Addr:              addr,
			Handler:           web.NewHandler(store),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		fmt.Printf("Serving on http://%s\n", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(err)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "127.0.0.1:8422", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
