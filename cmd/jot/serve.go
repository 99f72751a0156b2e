package main

import (
	"fmt"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/internal/web"
	"github.com/aretw0/jotter/pkg/adapters/kv"
)

var listenFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notes page over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		listen := cfg.Web.Listen
		if cmd.Flags().Changed("listen") {
			listen = listenFlag
		}

		drafts := kv.NewDrafts(cfg.Web.DraftTTL)
		s, err := openSession(jotter.WithDraftCache(drafts))
		if err != nil {
			return fmt.Errorf("opening notes: %w", err)
		}
		defer s.close()

		server := web.NewServer(s.svc, drafts, s.prefs, web.Config{
			LoginTTL:   cfg.Web.LoginTTL,
			DraftDelay: cfg.Web.DraftDelay,
			Logger:     logger,
		})
		defer server.Close()

		if err := server.ListenAndServe(ctx, listen); err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		logger.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&listenFlag, "listen", "l", "", "Listen address (default from config, 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}
