package report

import (
	"io"

	"github.com/nao1215/thronescan/internal/model"
)

// RawTextWriter dumps the aggregated OCR text of a batch so the run can be
// replayed without the images.
type RawTextWriter struct {
	baseWriter
}

// NewRawTextWriter creates a RawTextWriter that outputs to the given writer.
func NewRawTextWriter(output io.Writer) *RawTextWriter {
	return &RawTextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs batch.RawText verbatim.
func (w *RawTextWriter) Write(batch *model.Batch) (int, error) {
	return io.WriteString(w.output, batch.RawText)
}
