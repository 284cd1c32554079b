// Package jsonl writes evaluation datasets as newline-delimited JSON, one
// sample per line.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lmchoi/nitpicker/internal/domain"
)

// Writer persists dataset samples to <dir>/<name>.jsonl.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at the given directory. The directory is
// created on first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Write serializes the samples, one JSON object per line, and returns the
// path written.
func (w *Writer) Write(name string, samples []domain.Sample) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(w.dir, name+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	for i, sample := range samples {
		if err := enc.Encode(sample); err != nil {
			return "", fmt.Errorf("encode sample %d: %w", i, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}

	return path, nil
}
