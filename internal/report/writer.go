package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/thronescan/internal/model"
)

// Writer defines the interface for batch output.
// Implementations write one view of a processed batch: the player CSV,
// the diagnostics file, the raw text dump or a summary.
type Writer interface {
	// Write outputs the batch to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(batch *model.Batch) (int, error)
}

// MultiWriter writes a batch to several Writers in order.
// This is useful for printing a summary to the terminal while saving it
// to a file.
type MultiWriter struct {
	// writers receive the batch in order.
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the batch to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(batch *model.Batch) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(batch)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	// output is the destination for written data.
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// CreateFile creates or truncates path, creating missing parent
// directories first.
func CreateFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // Output files are meant to be shared
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// WriteFile writes batch to path with w, where newWriter builds the
// Writer for the opened file.
func WriteFile(path string, batch *model.Batch, newWriter func(io.Writer) Writer) (err error) {
	f, err := CreateFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = newWriter(f).Write(batch)
	return err
}

// countingWriter tracks the bytes written through it, for writers that
// wrap output in a buffered or CSV writer.
type countingWriter struct {
	// w is the wrapped destination.
	w io.Writer

	// n is the number of bytes accepted by w so far.
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}
