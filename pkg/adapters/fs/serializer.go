package fs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/jotter/pkg/core"
	"gopkg.in/yaml.v3"
)

// frontmatter is the YAML header of a note file.
type frontmatter struct {
	ID        int64 `yaml:"id"`
	Timestamp int64 `yaml:"timestamp"`
}

var (
	fenceOpen  = []byte("---\n")
	fenceClose = []byte("\n---")
)

// MarkdownSerializer reads and writes notes as Markdown with a YAML frontmatter
// carrying the id and timestamp. The body is the note content, byte for byte.
type MarkdownSerializer struct{}

func (MarkdownSerializer) Parse(r io.Reader) (core.Note, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return core.Note{}, err
	}

	if !bytes.HasPrefix(data, fenceOpen) {
		return core.Note{}, errors.New("missing frontmatter")
	}

	rest := data[len(fenceOpen):]
	end := bytes.Index(rest, fenceClose)
	if end < 0 {
		return core.Note{}, errors.New("frontmatter started but no closing delimiter found")
	}

	var fm frontmatter
	if err := yaml.Unmarshal(rest[:end+1], &fm); err != nil {
		return core.Note{}, fmt.Errorf("parse frontmatter: %w", err)
	}

	body := rest[end+len(fenceClose):]
	body = bytes.TrimPrefix(body, []byte("\n"))

	return core.Note{
		ID:        fm.ID,
		Content:   string(body),
		Timestamp: fm.Timestamp,
	}, nil
}

func (MarkdownSerializer) Serialize(n core.Note) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(fenceOpen)
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(frontmatter{ID: n.ID, Timestamp: n.Timestamp}); err != nil {
		return nil, err
	}
	encoder.Close()
	buf.WriteString("---\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}
