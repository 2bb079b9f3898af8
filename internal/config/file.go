package config

import (
	"strings"

	"github.com/nao1215/thronescan/internal/parser"
)

// File represents the structure of the .thronescan configuration file.
// Every field is optional; values given on the command line win.
type File struct {
	// Aliases maps a canonical player name to its known misreadings.
	// They are added on top of the built-in table.
	Aliases map[string][]string `yaml:"aliases,omitempty"`

	// EnemyLabel replaces the default "Enemy" team name.
	EnemyLabel string `yaml:"enemy_label,omitempty"`

	// MergePolicy is "keep-first" or "keep-last".
	MergePolicy string `yaml:"merge_policy,omitempty"`

	// Language is the Tesseract language.
	Language string `yaml:"language,omitempty"`

	// Tessdata is the Tesseract language data directory.
	Tessdata string `yaml:"tessdata,omitempty"`

	// Registry is the path of the name to class CSV.
	Registry string `yaml:"registry,omitempty"`

	// Color is the default friendly color.
	Color string `yaml:"color,omitempty"`

	// Workers overrides the default worker count when positive.
	Workers int `yaml:"workers,omitempty"`
}

// AliasTable returns the built-in alias table extended with the aliases
// of the file. A nil File yields the built-in table.
func (f *File) AliasTable() *parser.AliasTable {
	table := parser.DefaultAliasTable()
	if f == nil {
		return table
	}
	for canonical, variants := range f.Aliases {
		canonical = strings.TrimSpace(canonical)
		if canonical == "" {
			continue
		}
		table.Add(canonical, variants...)
	}
	return table
}
