package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/thronescan/internal/model"
)

// JSONWriter outputs batches in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the batch in JSON format.
func (w *JSONWriter) Write(batch *model.Batch) (int, error) {
	return w.writeJSON(batch)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps a batch with the tool version and its summary counts.
type JSONReport struct {
	// Version is the thronescan version that produced the report.
	Version string `json:"version"`

	// Summary holds the counts shown in the terminal summary.
	Summary model.Summary `json:"summary"`

	// Batch is the full processed batch.
	Batch *model.Batch `json:"batch"`
}

// NewJSONReport creates a JSONReport for batch.
func NewJSONReport(batch *model.Batch, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Summary: batch.Summarize(),
		Batch:   batch,
	}
}

// FullJSONWriter outputs batches wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	// version is stamped into every report.
	version string
}

// NewFullJSONWriter creates a writer for complete reports with metadata.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the batch wrapped with metadata.
func (w *FullJSONWriter) Write(batch *model.Batch) (int, error) {
	return w.writeJSON(NewJSONReport(batch, w.version))
}
