// Package parser turns single lines of OCR'd leaderboard text into their
// parts: cells, the color marker, the player name and the numeric stats.
//
// Every function here works on one line or one cell and holds no state
// between calls. Name aliases are supplied through an explicit AliasTable
// so callers decide which misreadings are corrected.
package parser
