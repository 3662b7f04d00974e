// Package journal appends newline-delimited JSON records to a file, giving
// the bot a machine-readable event trail next to its console log.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Writer appends one JSON object per line. Safe for concurrent use. A nil
// *Writer is a valid no-op sink, so call sites don't need to guard on whether
// journaling is configured.
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
}

// Open creates (or appends to) the journal at path, creating parent
// directories as needed. An empty path yields a nil no-op writer.
func Open(path string) (*Writer, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal open: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriterSize(f, 64*1024)}, nil
}

// Append writes v as one JSON line and flushes so tailers see it immediately.
func (w *Writer) Append(v any) error {
	if w == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return fmt.Errorf("journal: closed")
	}
	if _, err := w.buf.Write(b); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil
	w.buf = nil
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
