package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/pkg/core"
)

var (
	listSort string
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(jotter.WithMustExist(true))
		if err != nil {
			return fmt.Errorf("opening notes: %w", err)
		}
		defer s.close()

		d := core.ParseDirective(listSort)
		if !cmd.Flags().Changed("sort") {
			if d, err = s.prefs.LoadDirective(); err != nil {
				logger.Warn("load sort preference failed", "error", err)
			}
		}

		if listJSON {
			notes, err := s.svc.ListNotes(context.Background(), d)
			if err != nil {
				return fmt.Errorf("listing notes: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(notes); err != nil {
				return fmt.Errorf("encoding notes: %w", err)
			}
			return nil
		}

		items, err := s.svc.Refresh(context.Background(), d)
		if err != nil {
			return fmt.Errorf("listing notes: %w", err)
		}
		printItems(cmd.OutOrStdout(), items)
		if !d.Known() {
			fmt.Fprintf(cmd.ErrOrStderr(), "note: unknown sort %q, showing storage order\n", d)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "Sort order: NewestToOldest or OldestToNewest (default: saved preference)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output notes as JSON")
	rootCmd.AddCommand(listCmd)
}
