package parser

import (
	"strconv"
	"strings"
)

// CleanNumeric repairs the usual OCR confusions in a numeric cell and
// returns a digits-only string.
//
// A cell that is only "L" is a misread 1. Every lowercase "o" is a misread
// 0. Anything else that is not a digit is dropped, and an empty result
// becomes "0". Applying CleanNumeric to its own output returns it unchanged.
func CleanNumeric(cell string) string {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "L" {
		return "1"
	}

	digits := strings.Map(func(r rune) rune {
		switch {
		case r == 'o':
			return '0'
		case r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, trimmed)

	if digits == "" {
		return "0"
	}
	return digits
}

// ParseNumeric cleans a cell and converts it to an integer.
// Values too large for int64 yield 0, the same as missing data.
func ParseNumeric(cell string) int64 {
	n, err := strconv.ParseInt(CleanNumeric(cell), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
