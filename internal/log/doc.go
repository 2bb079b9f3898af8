// Package log builds the slog loggers used across thronescan.
//
// Log records often carry text read from screenshots, which can contain
// arbitrary bytes: escape sequences, stray control characters or whole
// pages of garbage. SanitizingHandler wraps any slog.Handler and cleans
// string attributes before they reach it:
//   - control characters become spaces
//   - values are truncated to MaxValueLength runes
//   - values under the raw, line, text and cell keys are truncated to
//     MaxTextLength runes
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("line discarded", "line_no", 3, "line", raw)
package log
