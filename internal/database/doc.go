// Package database keeps the history of processed batches in SQLite (via
// modernc.org/sqlite, no cgo).
//
// HistoryDB stores:
//   - every batch as JSON with its fingerprint and summary counts
//   - one row per accepted player per batch, for per-player history
//
// The fingerprint lets callers notice when the same OCR text is imported
// twice.
package database
