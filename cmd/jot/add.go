package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter/pkg/core"
)

var addCmd = &cobra.Command{
	Use:   "add <text...>",
	Short: "Save a new note and print the list",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return fmt.Errorf("opening notes: %w", err)
		}
		defer s.close()

		d, err := s.prefs.LoadDirective()
		if err != nil {
			logger.Warn("load sort preference failed", "error", err)
		}

		field := &core.TextField{Name: "cli", Text: strings.Join(args, " ")}
		id, err := s.svc.Save(context.Background(), field, d)
		if err != nil && id == 0 {
			return fmt.Errorf("saving note: %w", err)
		}
		if err != nil {
			logger.Error("list not refreshed", "id", id, "error", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved note %d\n", id)
		printItems(cmd.OutOrStdout(), s.svc.Display().Items())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
