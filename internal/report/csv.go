package report

import (
	"encoding/csv"
	"io"

	"github.com/nao1215/thronescan/internal/model"
)

// CSVWriter writes the accepted players of a batch, one row per player in
// the column order of model.CSVHeader. The file has no header row.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs batch.Players in their current order.
func (w *CSVWriter) Write(batch *model.Batch) (int, error) {
	cw := &countingWriter{w: w.output}
	out := csv.NewWriter(cw)

	for _, p := range batch.Players {
		if err := out.Write(p.CSVFields()); err != nil {
			return cw.n, err
		}
	}
	out.Flush()
	return cw.n, out.Error()
}
