package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/internal/config"
	"github.com/aretw0/jotter/internal/logging"
	"github.com/aretw0/jotter/pkg/adapters/kv"
	"github.com/aretw0/jotter/pkg/core"
)

var (
	verbose    bool
	configPath string
	dirFlag    string
	adapter    string
	nameFlag   string

	cfg       config.Config
	logger    = slog.New(slog.DiscardHandler)
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jot",
	Short: "A tiny local-first notes journal",
	Long: `jot appends short notes to a local database (SQLite or a Markdown
directory) and lists them newest or oldest first. It can also serve the
notes page over HTTP and follow changes made by other processes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts := config.LoadOptions{ConfigPath: configPath}
		if cmd.Flags().Changed("dir") {
			opts.Flags.Dir = &dirFlag
		}
		if cmd.Flags().Changed("adapter") {
			opts.Flags.Adapter = &adapter
		}
		if cmd.Flags().Changed("name") {
			opts.Flags.Name = &nameFlag
		}

		loaded, err := config.Load(opts)
		if err != nil {
			return err
		}
		cfg = loaded

		l, closer, err := logging.New(logging.Options{
			Level:     cfg.Logging.Level,
			File:      cfg.Logging.File,
			MaxSizeMB: cfg.Logging.MaxSizeMB,
			MaxFiles:  cfg.Logging.MaxFiles,
			Verbose:   verbose,
		})
		if err != nil {
			return err
		}
		logger, logCloser = l, closer
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	// Closed here rather than in a post-run hook, which cobra skips when RunE fails.
	if logCloser != nil {
		_ = logCloser.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default jot.toml, or $JOT_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "Data directory (default: nearest directory holding .jotter, else the current one)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "sqlite", "Storage adapter: sqlite or fs")
	rootCmd.PersistentFlags().StringVar(&nameFlag, "name", "NotesAppDB", "Database name")
}

// dataDir resolves where the notes live.
func dataDir() (string, error) {
	if cfg.Storage.Dir != "" {
		return cfg.Storage.Dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	if root, err := jotter.FindRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}

// session bundles what every command needs. close releases the database.
type session struct {
	dir   string
	svc   *core.Service
	prefs *kv.Prefs
}

func (s *session) close() {
	if err := s.svc.Close(); err != nil {
		logger.Warn("close repository failed", "error", err)
	}
}

func openSession(extra ...jotter.Option) (*session, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}

	opts := append([]jotter.Option{
		jotter.WithAdapter(cfg.Storage.Adapter),
		jotter.WithName(cfg.Storage.Name),
		jotter.WithLogger(logger),
	}, extra...)

	svc, err := jotter.New(dir, opts...)
	if err != nil {
		return nil, err
	}

	return &session{
		dir:   dir,
		svc:   svc,
		prefs: kv.NewPrefs(kv.PrefsPath(dir, jotter.DefaultSystemDir)),
	}, nil
}

func printItems(w io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "(no notes)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "- %s\n", item)
	}
}
