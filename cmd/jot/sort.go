package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/core"
)

var sortReset bool

var sortCmd = &cobra.Command{
	Use:   "sort [NewestToOldest|OldestToNewest]",
	Short: "Show or set the saved sort order",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := dataDir()
		if err != nil {
			return fmt.Errorf("resolving data directory: %w", err)
		}
		prefs := kv.NewPrefs(kv.PrefsPath(dir, jotter.DefaultSystemDir))
		out := cmd.OutOrStdout()

		switch {
		case sortReset:
			if err := prefs.ClearDirective(); err != nil {
				return fmt.Errorf("resetting sort order: %w", err)
			}
			fmt.Fprintf(out, "Sort order reset to %s\n", core.DefaultDirective)

		case len(args) == 1:
			d := core.ParseDirective(args[0])
			if !d.Known() {
				fmt.Fprintf(cmd.ErrOrStderr(), "note: %q is not a known order; notes will be listed in storage order\n", d)
			}
			if err := prefs.SaveDirective(d); err != nil {
				return fmt.Errorf("saving sort order: %w", err)
			}
			fmt.Fprintf(out, "Sort order set to %s\n", d)

		default:
			d, err := prefs.LoadDirective()
			if err != nil {
				return fmt.Errorf("reading sort order: %w", err)
			}
			fmt.Fprintln(out, d)
		}
		return nil
	},
}

func init() {
	sortCmd.Flags().BoolVar(&sortReset, "reset", false, "Forget the saved order")
	rootCmd.AddCommand(sortCmd)
}
