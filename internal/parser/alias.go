package parser

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// AliasTable maps known OCR misreadings of player names to their canonical
// spelling. Lookups ignore case.
type AliasTable struct {
	aliases map[string]string
}

// NewAliasTable returns an empty table.
func NewAliasTable() *AliasTable {
	return &AliasTable{aliases: make(map[string]string)}
}

// DefaultAliasTable returns a table preloaded with the misreadings seen on
// real leaderboards.
func DefaultAliasTable() *AliasTable {
	t := NewAliasTable()
	t.Add("Gaaiaa", "gaiaaa", "gaiaa", "gaaiaaa")
	t.Add("Requiem", "requrem", "requzem")
	t.Add("Elyeat", "elveat")
	t.Add("Pradel", "xpradel")
	t.Add("FxT1", "fxt1", "fxti", "fxtl", "exti")
	return t
}

// Add registers variants as misreadings of canonical. Later additions for
// the same variant replace earlier ones.
func (t *AliasTable) Add(canonical string, variants ...string) {
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		t.aliases[v] = canonical
	}
}

// Lookup returns the canonical spelling for name, if name is a known
// misreading.
func (t *AliasTable) Lookup(name string) (string, bool) {
	if t == nil {
		return "", false
	}
	canonical, ok := t.aliases[strings.ToLower(name)]
	return canonical, ok
}

// Len returns the number of registered misreadings.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.aliases)
}

// ResolveName turns a raw name cell into a canonical player name.
//
// The cell is NFKC-normalized so full-width forms fold to ASCII.
// Non-alphanumeric characters are removed, then any leading digits (rank
// numbers OCR'd into the name column). Known misreadings are replaced from
// aliases and the first letter is upper-cased. An empty result means the
// cell held no usable name.
func ResolveName(raw string, aliases *AliasTable) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, norm.NFKC.String(raw))
	name = strings.TrimLeftFunc(name, unicode.IsDigit)
	if name == "" {
		return ""
	}

	if canonical, ok := aliases.Lookup(name); ok {
		name = canonical
	}

	return capitalize(name)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
