// Package model defines the data structures shared across thronescan.
//
// The main types are:
//   - Player: one cleaned leaderboard row
//   - Diagnostic: an entry of the diagnostics stream (malformed lines,
//     unknown-class players, anomaly-flagged players)
//   - Warning: one plausibility rule a player violated
//   - Batch: all inputs and results of a single run
//
// Models live in their own package so that the parser, recognizer,
// validator, reports and database can share them without import cycles.
// All of them serialize to JSON for reports and database storage.
package model
