package main

import (
	"fmt"
	"encoding/json"

	"github.com/aretw0/introspection"
	"github.com/spf13/cobra"
)

type componentStatus struct {
	Type  string `json:"type"`
	State any    `json:"state"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the internal state of the storage and service as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return fmt.Errorf("opening notes: %w", err)
		}
		defer s.close()

		var report []componentStatus
		for _, c := range []any{s.svc.Repository(), s.svc} {
			state, ok := c.(introspection.Introspectable)
			if !ok {
				continue
			}
			typ := "unknown"
			if comp, ok := c.(introspection.Component); ok {
				typ = comp.ComponentType()
			}
			report = append(report, componentStatus{Type: typ, State: state.State()})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding status: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
