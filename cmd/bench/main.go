package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/jotter"
	"github.com/aretw0/jotter/pkg/core"
)

func main() {
	count := flag.Int("count", 1000, "Number of notes to save")
	adapter := flag.String("adapter", jotter.AdapterSQLite, "Storage adapter (sqlite or fs)")
	keep := flag.Bool("keep", false, "Keep the benchmark directory after running")
	flag.Parse()

	benchDir, err := os.MkdirTemp("", "jotter_bench_")
	if err != nil {
		panic(err)
	}
	defer func() {
		if !*keep {
			os.RemoveAll(benchDir)
		} else {
			fmt.Printf("Keeping bench dir: %s\n", benchDir)
		}
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	svc, err := jotter.New(benchDir, jotter.WithAdapter(*adapter), jotter.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	fmt.Printf("Saving %d notes with the %s adapter in %s...\n", *count, *adapter, benchDir)
	startSave := time.Now()
	for i := 0; i < *count; i++ {
		field := &core.TextField{Name: "bench", Text: fmt.Sprintf("Benchmark note %d", i)}
		// Save refreshes the whole list each time, so this measures the realistic path.
		if _, err := svc.Save(ctx, field, core.NewestToOldest); err != nil {
			panic(err)
		}
	}
	saveDuration := time.Since(startSave)
	if err := svc.Close(); err != nil {
		panic(err)
	}

	// A fresh service simulates a new CLI run against an existing directory.
	svc2, err := jotter.New(benchDir, jotter.WithAdapter(*adapter), jotter.WithLogger(logger))
	if err != nil {
		panic(err)
	}
	defer svc2.Close()

	startList := time.Now()
	items, err := svc2.Refresh(ctx, core.OldestToNewest)
	if err != nil {
		panic(err)
	}
	listDuration := time.Since(startList)

	fmt.Printf("--------------------------------------------------\n")
	fmt.Printf("Benchmark Result (%d notes, %s):\n", *count, *adapter)
	fmt.Printf("  Save (total): %v\n", saveDuration)
	fmt.Printf("  Save (avg):   %v\n", saveDuration/time.Duration(max(*count, 1)))
	fmt.Printf("  Reopen+List:  %v (Items: %d)\n", listDuration, len(items))
	fmt.Printf("--------------------------------------------------\n")
}
