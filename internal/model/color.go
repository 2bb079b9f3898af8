package model

import "strings"

// Color is a team color marker as printed on the leaderboard.
type Color string

// Supported colors.
const (
	ColorRed     Color = "red"
	ColorYellow  Color = "yellow"
	ColorUnknown Color = "unknown"
)

// String returns the color name.
func (c Color) String() string {
	return string(c)
}

// ParseColor parses an operator-supplied filter color.
// It accepts the full English and French names and the single-letter
// shorthands "y" and "r". The second return value is false when s names
// no supported color.
func ParseColor(s string) (Color, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yellow", "jaune":
		return ColorYellow, true
	case "r", "red", "rouge":
		return ColorRed, true
	default:
		return ColorUnknown, false
	}
}
