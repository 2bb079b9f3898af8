package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/nao1215/thronescan/internal/model"
)

// ruleWidth is the width of the separators in text summaries.
const ruleWidth = 70

// TextWriter outputs a human-readable summary of a batch for terminal
// display. Players themselves go to the CSV file; this lists counts,
// warnings and failed inputs.
type TextWriter struct {
	baseWriter

	// verbose adds the malformed lines to the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose adds malformed lines to the summary.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the batch summary.
func (w *TextWriter) Write(batch *model.Batch) (int, error) {
	var sb strings.Builder
	summary := batch.Summarize()

	w.writeHeader(&sb, batch)
	w.writeSummary(&sb, batch.EnemyLabel, summary)
	w.writeWarnings(&sb, batch)
	w.writeUnknown(&sb, batch)
	w.writeFailures(&sb, batch)
	if w.verbose {
		w.writeMalformed(&sb, batch)
	}
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *TextWriter) writeHeader(sb *strings.Builder, batch *model.Batch) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                       THRONESCAN BATCH SUMMARY\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Date:         %s\n", batch.Date)
	fmt.Fprintf(sb, "Friendly:     %s (%s)\n", batch.FilterColor, model.TeamSuits)
	fmt.Fprintf(sb, "Inputs:       %d\n", len(batch.Sources))
	if batch.Fingerprint != "" {
		fmt.Fprintf(sb, "Fingerprint:  %s\n", shortFingerprint(batch.Fingerprint))
	}
	if batch.ErrorMessage != "" {
		fmt.Fprintf(sb, "Status:       ERROR - %s\n", batch.ErrorMessage)
	} else {
		sb.WriteString("Status:       Complete\n")
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeSummary(sb *strings.Builder, enemyLabel string, s model.Summary) {
	section(sb, "SUMMARY")
	fmt.Fprintf(sb, "  Players:        %s (%s %s, %s %s)\n",
		humanize.Comma(int64(s.Players)), humanize.Comma(int64(s.Suits)), model.TeamSuits,
		humanize.Comma(int64(s.Enemies)), enemyLabel)
	fmt.Fprintf(sb, "  Malformed:      %d\n", s.Malformed)
	fmt.Fprintf(sb, "  Unknown class:  %d\n", s.UnknownClass)
	fmt.Fprintf(sb, "  Flagged:        %d (%d warnings)\n", s.Flagged, s.Warnings)
	if s.FailedImages > 0 {
		fmt.Fprintf(sb, "  Failed inputs:  %d\n", s.FailedImages)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeWarnings(sb *strings.Builder, batch *model.Batch) {
	if len(batch.Warnings) == 0 {
		return
	}
	section(sb, "WARNINGS")
	for _, warn := range batch.Warnings {
		fmt.Fprintf(sb, "  [!] %-16s %-8s %s (%s)\n",
			warn.Player, warn.Class, warn.Rule.Message(), humanize.Comma(warn.Value))
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeUnknown(sb *strings.Builder, batch *model.Batch) {
	unknown := batch.DiagnosticsOf(model.DiagnosticUnknownClass)
	if len(unknown) == 0 {
		return
	}
	section(sb, "UNKNOWN CLASS")
	for _, d := range unknown {
		fmt.Fprintf(sb, "  [?] %s (%s)\n", d.Player.Name, d.Player.Team)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeFailures(sb *strings.Builder, batch *model.Batch) {
	var failed []model.Source
	for _, src := range batch.Sources {
		if src.ErrorMessage != "" {
			failed = append(failed, src)
		}
	}
	if len(failed) == 0 {
		return
	}
	section(sb, "FAILED INPUTS")
	for _, src := range failed {
		fmt.Fprintf(sb, "  [x] %s: %s\n", src.Path, src.ErrorMessage)
	}
	sb.WriteString("\n")
}

func (w *TextWriter) writeMalformed(sb *strings.Builder, batch *model.Batch) {
	malformed := batch.DiagnosticsOf(model.DiagnosticMalformed)
	if len(malformed) == 0 {
		return
	}
	section(sb, "MALFORMED LINES")
	for _, d := range malformed {
		fmt.Fprintf(sb, "  %4d: %s\n", d.Line, d.Text)
	}
	sb.WriteString("\n")
}

// section writes a titled separator block.
func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// shortFingerprint returns the first 12 hex digits of a fingerprint.
func shortFingerprint(fp string) string {
	if len(fp) <= 12 {
		return fp
	}
	return fp[:12]
}
