package parser

import (
	"regexp"
	"strings"
)

// Delimiter separates cells within a leaderboard line.
const Delimiter = "|"

// colorTokens are the color markers recognized in a cell, lowercased.
var colorTokens = map[string]bool{
	"red":    true,
	"rouge":  true,
	"yellow": true,
	"jaune":  true,
}

// Line is the result of locating the color marker on one line.
type Line struct {
	// Cells holds every trimmed cell of the line.
	Cells []string

	// ColorIndex is the position of the color cell within Cells.
	ColorIndex int

	// NameCell is the raw cell immediately before the color cell.
	NameCell string

	// ColorCell is the raw color cell.
	ColorCell string

	// NumericCells holds every raw cell after the color cell.
	NumericCells []string
}

// SplitCells splits a line on the delimiter and trims every cell.
// Empty cells at the end of the line, produced by trailing delimiters, are
// dropped. Empty cells elsewhere are kept.
func SplitCells(line string) []string {
	parts := strings.Split(strings.TrimSpace(line), Delimiter)
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// IsColorToken reports whether cell is exactly one of the color markers,
// ignoring case.
func IsColorToken(cell string) bool {
	return colorTokens[strings.ToLower(strings.TrimSpace(cell))]
}

// LocateColor returns the index of the first cell that is a color marker,
// or -1 when there is none.
func LocateColor(cells []string) int {
	for i, c := range cells {
		if IsColorToken(c) {
			return i
		}
	}
	return -1
}

// ParseLine splits a line and locates its color marker.
// It reports false when the line has no color marker, or when the marker
// is the first cell and so no name can precede it. Such lines carry no
// usable structure and are dropped by callers.
func ParseLine(raw string) (Line, bool) {
	cells := SplitCells(raw)
	idx := LocateColor(cells)
	if idx <= 0 {
		return Line{}, false
	}
	return Line{
		Cells:        cells,
		ColorIndex:   idx,
		NameCell:     cells[idx-1],
		ColorCell:    cells[idx],
		NumericCells: cells[idx+1:],
	}, true
}

var (
	delimiterRun  = regexp.MustCompile(`\s*\|\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// CleanLine is the light cleaning applied to lines written to the
// diagnostics stream: delimiters and the spaces around them become a single
// space and runs of whitespace are collapsed.
func CleanLine(raw string) string {
	s := delimiterRun.ReplaceAllString(raw, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
