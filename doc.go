// Package jotter is the composition root of a tiny local-first notes journal.
//
// It wires the core domain (notes, ordering, the save-then-refresh session)
// to a storage adapter chosen at startup, following a hexagonal layout:
//
//   - pkg/core holds the entities, the Repository port and the Service.
//   - pkg/adapters/sqlite stores notes in an embedded SQLite file (default).
//   - pkg/adapters/fs stores each note as a Markdown file with YAML frontmatter.
//   - pkg/adapters/kv keeps drafts in memory and preferences on disk.
//
// Notes are append-only: each one gets an auto-increment id and a timestamp
// when written, and is never changed afterwards. Lists are always re-read from
// storage and fully re-rendered, newest or oldest first.
//
// Usage:
//
//	svc, err := jotter.New("./notes", jotter.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer svc.Close()
//
//	field := &core.TextField{Name: "cli", Text: "Buy milk"}
//	id, err := svc.Save(ctx, field, jotter.NewestToOldest)
package jotter
