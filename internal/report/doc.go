// Package report writes processed batches.
//
// Every writer implements Writer and can be composed with MultiWriter:
//   - CSVWriter: the accepted players, the main output file
//   - DiagnosticsWriter: malformed lines, unknown-class and flagged players
//   - RawTextWriter: the aggregated OCR text, for replays
//   - TextWriter: human-readable summary for the terminal
//   - MarkdownWriter: shareable batch report with tables and a chart
//   - JSONWriter and FullJSONWriter: structured output for tools
package report
