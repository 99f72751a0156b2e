package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// ErrRootNotFound is returned when no data directory encloses the start path.
var ErrRootNotFound = errors.New("root not found")

// FindRoot walks upwards from startDir looking for the system directory marker
// and returns the absolute path of the directory that holds it.
func FindRoot(startDir string) (string, error) {
	return findRoot(startDir, DefaultSystemDir)
}

func findRoot(startDir, marker string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if isDir(filepath.Join(dir, marker)) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", ErrRootNotFound
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
