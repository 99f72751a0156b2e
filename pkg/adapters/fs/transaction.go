package fs

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/jotter/pkg/core"
)

// createTx is the unit of work behind Create: the note file and the advanced
// id sequence become visible together, or neither does.
type createTx struct {
	repo    *Repository
	note    core.Note
	data    []byte
	path    string
	written bool
}

func (r *Repository) begin(content string) *createTx {
	return &createTx{
		repo: r,
		note: core.Note{
			Content:   content,
			Timestamp: r.config.Now().UnixMilli(),
		},
	}
}

// stage reserves the next free id and encodes the note.
// Files dropped in by other processes push the id forward; nothing is overwritten.
func (tx *createTx) stage() error {
	id := tx.repo.meta.NextID
	for {
		path := tx.repo.notePath(id)
		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			tx.path = path
			break
		}
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		id++
	}
	tx.note.ID = id

	data, err := tx.repo.serializer.Serialize(tx.note)
	if err != nil {
		return fmt.Errorf("serialize note: %w", err)
	}
	tx.data = data
	return nil
}

// commit writes the note, then the meta header. The index is derived data and
// is updated best effort once both are durable.
func (tx *createTx) commit() error {
	if err := WriteFileAtomic(tx.path, tx.data, 0o644); err != nil {
		return err
	}
	tx.written = true

	next := *tx.repo.meta
	next.NextID = tx.note.ID + 1
	if err := next.save(tx.repo.metaPath()); err != nil {
		return fmt.Errorf("advance id sequence: %w", err)
	}
	*tx.repo.meta = next

	tx.repo.index.add(tx.note)
	if err := tx.repo.index.save(); err != nil {
		tx.repo.config.Logger.Warn("index update failed, will rebuild on next open", "id", tx.note.ID, "error", err)
	}
	return nil
}

func (tx *createTx) rollback() {
	if !tx.written {
		return
	}
	if err := os.Remove(tx.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		tx.repo.config.Logger.Error("rollback failed", "path", tx.path, "error", err)
	}
	tx.written = false
}
