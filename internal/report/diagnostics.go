package report

import (
	"bufio"
	"encoding/csv"
	"io"

	"github.com/nao1215/thronescan/internal/model"
)

// sectionSeparator sits between the sections of the diagnostics file.
const sectionSeparator = "\n\n"

// DiagnosticsWriter writes the diagnostics file: malformed lines as
// cleaned text, then players without a known class, then players that
// tripped a plausibility rule. Sections are separated by two blank lines.
// Player rows use the main output columns and the same CSV quoting as
// CSVWriter; malformed lines are written as they are.
type DiagnosticsWriter struct {
	baseWriter
}

// NewDiagnosticsWriter creates a DiagnosticsWriter that outputs to the
// given writer.
func NewDiagnosticsWriter(output io.Writer) *DiagnosticsWriter {
	return &DiagnosticsWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the three sections of batch.Diagnostics. The separators
// are written even when a section is empty so the layout stays fixed.
func (w *DiagnosticsWriter) Write(batch *model.Batch) (int, error) {
	cw := &countingWriter{w: w.output}
	bw := bufio.NewWriter(cw)
	rows := csv.NewWriter(bw)

	sections := []model.DiagnosticKind{
		model.DiagnosticMalformed,
		model.DiagnosticUnknownClass,
		model.DiagnosticAnomaly,
	}
	for i, kind := range sections {
		if i > 0 {
			if _, err := bw.WriteString(sectionSeparator); err != nil {
				return cw.n, err
			}
		}
		for _, d := range batch.DiagnosticsOf(kind) {
			if err := writeDiagnostic(bw, rows, d); err != nil {
				return cw.n, err
			}
		}
	}

	err := bw.Flush()
	return cw.n, err
}

// writeDiagnostic writes one entry: the attached player as a CSV row, or
// the cleaned line text.
func writeDiagnostic(bw *bufio.Writer, rows *csv.Writer, d model.Diagnostic) error {
	if d.Player == nil {
		_, err := bw.WriteString(d.Text + "\n")
		return err
	}
	if err := rows.Write(d.Player.CSVFields()); err != nil {
		return err
	}
	rows.Flush()
	return rows.Error()
}
