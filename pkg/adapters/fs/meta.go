package fs

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the on-disk layout version written by this build.
const SchemaVersion = 1

// ErrSchemaTooNew is returned when the directory was written by a newer build.
var ErrSchemaTooNew = errors.New("fs: schema version newer than code")

// meta is the database header kept in {SystemDir}/meta.yaml.
// NextID only ever grows, so ids are never handed out twice.
type meta struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
	NextID  int64  `yaml:"next_id"`
}

// loadMeta reads the header. found is false when the file does not exist yet.
func loadMeta(path string) (m *meta, found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read meta: %w", err)
	}

	m = &meta{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, true, fmt.Errorf("parse meta: %w", err)
	}
	return m, true, nil
}

func (m *meta) save(path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}
	return WriteFileAtomic(path, data, 0o644)
}
