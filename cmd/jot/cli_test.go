package main_test

import (
	"encoding/json"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// buildJot builds the jot binary into dir and returns its path.
func buildJot(t *testing.T, dir string) string {
	t.Helper()
	bin := filepath.Join(dir, "jot.exe")
	build := exec.Command("go", "build", "-o", bin, ".")
	if out, err := build.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build jot: %v\n%s", err, string(out))
	}
	return bin
}

func runJot(t *testing.T, bin, workDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(bin, args...)
	cmd.Dir = workDir
	cmd.Env = []string{"HOME=" + workDir}
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestCLI(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test in short mode")
	}

	for _, adapter := range []string{"sqlite", "fs"} {
		t.Run(adapter, func(t *testing.T) {
			work := t.TempDir()
			bin := buildJot(t, work)
			data := filepath.Join(work, "data")
			common := []string{"--dir", data, "--adapter", adapter}

			t.Run("List Before Any Save Fails", func(t *testing.T) {
				out, err := runJot(t, bin, work, append([]string{"list"}, common...)...)
				require.Error(t, err, out)
			})

			t.Run("Add Prints The List", func(t *testing.T) {
				out, err := runJot(t, bin, work, append([]string{"add", "first", "note"}, common...)...)
				require.NoError(t, err, out)
				require.Contains(t, out, "Saved note 1")
				require.Contains(t, out, "- first note")

				time.Sleep(5 * time.Millisecond)
				out, err = runJot(t, bin, work, append([]string{"add", "second"}, common...)...)
				require.NoError(t, err, out)
				require.Contains(t, out, "Saved note 2")
			})

			t.Run("Empty Add Is Rejected", func(t *testing.T) {
				out, err := runJot(t, bin, work, append([]string{"add"}, common...)...)
				require.Error(t, err)
				require.Contains(t, out, "add note to save")

				if adapter == "sqlite" {
					// A clean close checkpoints and removes the WAL; it stays behind when the handle leaks.
					require.NoFileExists(t, filepath.Join(data, "NotesAppDB.db-wal"))
				}
			})

			t.Run("Sort Flag", func(t *testing.T) {
				out, err := runJot(t, bin, work, append([]string{"list", "--sort", "OldestToNewest"}, common...)...)
				require.NoError(t, err, out)
				require.Less(t, strings.Index(out, "first note"), strings.Index(out, "second"))

				out, err = runJot(t, bin, work, append([]string{"list", "--sort", "NewestToOldest"}, common...)...)
				require.NoError(t, err, out)
				require.Less(t, strings.Index(out, "second"), strings.Index(out, "first note"))
			})

			t.Run("Saved Preference", func(t *testing.T) {
				out, err := runJot(t, bin, work, append([]string{"sort", "OldestToNewest"}, common...)...)
				require.NoError(t, err, out)

				out, err = runJot(t, bin, work, append([]string{"sort"}, common...)...)
				require.NoError(t, err, out)
				require.Equal(t, "OldestToNewest", strings.TrimSpace(out))

				out, err = runJot(t, bin, work, append([]string{"list"}, common...)...)
				require.NoError(t, err, out)
				require.Less(t, strings.Index(out, "first note"), strings.Index(out, "second"))
			})

			t.Run("JSON", func(t *testing.T) {
				cmd := exec.Command(bin, append([]string{"list", "--json", "--sort", "OldestToNewest"}, common...)...)
				cmd.Dir = work
				cmd.Env = []string{"HOME=" + work}
				out, err := cmd.Output()
				require.NoError(t, err)

				var notes []struct {
					ID      int64  `json:"id"`
					Content string `json:"content"`
				}
				require.NoError(t, json.Unmarshal(out, &notes))
				require.Len(t, notes, 2)
				require.Equal(t, "first note", notes[0].Content)
				require.Equal(t, int64(2), notes[1].ID)
			})
		})
	}
}
