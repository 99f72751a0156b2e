package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Layout:
//
//	base/
//	  notes/ (.jotter/)
//	    journal/
//	      2026/
//	      stray/ (.jotter is a file)
//	  loose/
func TestFindRoot(t *testing.T) {
	base := t.TempDir()
	notes := filepath.Join(base, "notes")
	journal := filepath.Join(notes, "journal")
	year := filepath.Join(journal, "2026")
	stray := filepath.Join(journal, "stray")
	loose := filepath.Join(base, "loose")

	for _, dir := range []string{year, stray, loose, filepath.Join(notes, DefaultSystemDir)} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(stray, DefaultSystemDir), []byte("not a dir"), 0o644))

	tests := []struct {
		name  string
		start string
		want  string
	}{
		{name: "At Data Dir", start: notes, want: notes},
		{name: "One Level Down", start: journal, want: notes},
		{name: "Nested", start: year, want: notes},
		{name: "Marker File Is Ignored", start: stray, want: notes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindRoot(tt.start)
			require.NoError(t, err)
			require.Equal(t, filepath.Clean(tt.want), filepath.Clean(got))
		})
	}

	t.Run("Not Found", func(t *testing.T) {
		got, err := FindRoot(loose)
		require.ErrorIs(t, err, ErrRootNotFound)
		require.Empty(t, got)
	})

	t.Run("Custom Marker", func(t *testing.T) {
		require.NoError(t, os.Mkdir(filepath.Join(journal, ".notes"), 0o755))

		got, err := findRoot(year, ".notes")
		require.NoError(t, err)
		require.Equal(t, journal, got)
	})

	t.Run("Relative Start", func(t *testing.T) {
		t.Chdir(year)

		got, err := FindRoot(".")
		require.NoError(t, err)
		want, err := filepath.EvalSymlinks(notes)
		require.NoError(t, err)
		gotReal, err := filepath.EvalSymlinks(got)
		require.NoError(t, err)
		require.Equal(t, want, gotReal)
	})
}
