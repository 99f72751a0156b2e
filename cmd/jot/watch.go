package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/adapters/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the list and reprint it whenever the notes change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := openSession()
		if err != nil {
			return fmt.Errorf("opening notes: %w", err)
		}
		defer s.close()

		out := cmd.OutOrStdout()
		refresh := func() {
			d, err := s.prefs.LoadDirective()
			if err != nil {
				logger.Warn("load sort preference failed", "error", err)
			}
			items, err := s.svc.Refresh(ctx, d)
			if err != nil {
				logger.Error("refresh failed", "error", err)
				return
			}
			fmt.Fprintf(out, "--- %d notes (%s) ---\n", len(items), d)
			printItems(out, items)
		}

		events, err := s.svc.Watch(ctx)
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		source := lifecycle.NewSource(events)
		if err := source.Start(ctx); err != nil {
			return fmt.Errorf("starting event bridge: %w", err)
		}

		refresh()
		logger.Info("watching for changes", "dir", s.dir)
		for e := range source.Events() {
			logger.Debug("change detected", "event", e.String())
			refresh()
		}
		logger.Info("watch stopped", "events", source.Forwarded())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
