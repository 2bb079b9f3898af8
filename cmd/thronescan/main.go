// Package main provides the entry point for the thronescan CLI.
//
// thronescan reads end-of-match leaderboard screenshots with Tesseract,
// turns every row into a player record, checks the records against the
// class registry and the per-class anomaly rules, and writes the accepted
// players and the diagnostics to CSV.
//
// Usage:
//
//	thronescan process ./screenshots --color y --date "2025-09-03 21:00"
//	thronescan process --from-text tesseract_output.txt
//	thronescan classify ./matches
//	thronescan history --player TurboDedek
//
// See --help for all available options.
package main

// main is the entry point for thronescan.
func main() {
	Execute()
}
