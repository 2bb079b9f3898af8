// Package classify re-applies the alias table and the class registry to
// player CSV files written by earlier runs, so a registry update can be
// carried into old results without re-running OCR.
package classify

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/parser"
	"github.com/nao1215/thronescan/internal/recognize"
)

// OutputSuffix replaces the extension of a classified file.
const OutputSuffix = "_with_classes.csv"

// Column positions in player rows.
const (
	nameColumn = 2
	// legacyWidth is the width of rows written before the class column
	// existed.
	legacyWidth = model.StatCount + 3
)

// Stats counts what happened to the rows of one file.
type Stats struct {
	Rows    int
	Updated int
	Unknown int
	Copied  int
}

// Classifier rewrites player rows with resolved names and classes.
type Classifier struct {
	aliases *parser.AliasTable
	classes recognize.ClassResolver
	logger  *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithAliases sets the alias table. The built-in table is used otherwise.
func WithAliases(aliases *parser.AliasTable) Option {
	return func(c *Classifier) {
		c.aliases = aliases
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New returns a Classifier looking classes up in classes.
func New(classes recognize.ClassResolver, opts ...Option) *Classifier {
	c := &Classifier{classes: classes}
	for _, opt := range opts {
		opt(c)
	}
	if c.aliases == nil {
		c.aliases = parser.DefaultAliasTable()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Apply copies rows from r to w. Full rows get their name and class
// replaced, legacy rows without a class column get one inserted after the
// name, and any other row is copied unchanged.
func (c *Classifier) Apply(r io.Reader, w io.Writer) (Stats, error) {
	var stats Stats

	in := csv.NewReader(r)
	in.FieldsPerRecord = -1
	in.ReuseRecord = true
	out := csv.NewWriter(w)

	for {
		record, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("failed to read row %d: %w", stats.Rows+1, err)
		}
		stats.Rows++

		row, ok := c.classifyRow(record)
		switch {
		case !ok:
			stats.Copied++
		case row[nameColumn+1] == model.ClassUnknown:
			stats.Unknown++
			stats.Updated++
		default:
			stats.Updated++
		}
		if err := out.Write(row); err != nil {
			return stats, err
		}
	}

	out.Flush()
	return stats, out.Error()
}

// classifyRow returns the rewritten row and whether it was a player row.
func (c *Classifier) classifyRow(record []string) ([]string, bool) {
	switch len(record) {
	case len(model.CSVHeader):
		if record[nameColumn] == "name" {
			return record, false
		}
		row := append([]string(nil), record...)
		row[nameColumn] = c.resolve(record[nameColumn])
		row[nameColumn+1] = c.classes.Lookup(row[nameColumn])
		return row, true
	case legacyWidth:
		name := c.resolve(record[nameColumn])
		row := make([]string, 0, len(model.CSVHeader))
		row = append(row, record[:nameColumn]...)
		row = append(row, name, c.classes.Lookup(name))
		row = append(row, record[nameColumn+1:]...)
		return row, true
	default:
		return record, false
	}
}

// resolve maps a stored name through the alias table. Names the resolver
// would reduce to nothing are kept as they are.
func (c *Classifier) resolve(name string) string {
	resolved := parser.ResolveName(name, c.aliases)
	if resolved == "" {
		return name
	}
	return resolved
}

// ApplyFile classifies the CSV at path into OutputPath(path) and returns
// the output path.
func (c *Classifier) ApplyFile(path string) (string, Stats, error) {
	in, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return "", Stats{}, err
	}
	defer in.Close()

	outPath := OutputPath(path)
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // Output files are meant to be shared
	if err != nil {
		return "", Stats{}, err
	}

	stats, err := c.Apply(in, out)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return "", stats, fmt.Errorf("%s: %w", path, err)
	}

	c.logger.Info("file classified",
		"input", path,
		"output", outPath,
		"rows", stats.Rows,
		"unknown", stats.Unknown,
	)
	return outPath, stats, nil
}

// OutputPath returns the classified file name for path: the extension is
// replaced by OutputSuffix.
func OutputPath(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || ext == filepath.Base(path) {
		return path + OutputSuffix
	}
	return strings.TrimSuffix(path, ext) + OutputSuffix
}

// FindOutputs returns the main output files of every batch folder under
// dir, that is every <dir>/<sub>/<name> that exists.
func FindOutputs(dir, name string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		candidate := filepath.Join(dir, entry.Name(), name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			paths = append(paths, candidate)
		}
	}
	return paths, nil
}
