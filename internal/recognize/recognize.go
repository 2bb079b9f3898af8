package recognize

import (
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/parser"
)

// ClassResolver looks up the class of a player by name and returns
// model.ClassUnknown for names it does not know.
type ClassResolver interface {
	Lookup(name string) string
}

// Result is everything one Recognize call produced.
type Result struct {
	// Players are the deduplicated valid players sorted by kills.
	Players []*model.Player

	// Diagnostics holds one malformed entry per line with the wrong
	// number of numeric cells, in input order.
	Diagnostics []model.Diagnostic

	// Lines is the number of non-blank input lines.
	Lines int

	// Discarded is the number of lines without usable structure.
	Discarded int

	// Duplicates is the number of valid lines whose name was already seen.
	Duplicates int
}

// Recognizer converts OCR text into players.
type Recognizer struct {
	aliases    *parser.AliasTable
	classes    ClassResolver
	filter     model.Color
	enemyLabel string
	policy     MergePolicy
	logger     *slog.Logger
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithAliases sets the alias table used for name resolution.
// Without it the default table is used.
func WithAliases(aliases *parser.AliasTable) Option {
	return func(r *Recognizer) {
		r.aliases = aliases
	}
}

// WithEnemyLabel sets the label of rows whose color is not the filter color.
func WithEnemyLabel(label string) Option {
	return func(r *Recognizer) {
		if label != "" {
			r.enemyLabel = label
		}
	}
}

// WithMergePolicy sets how repeated names are merged.
func WithMergePolicy(policy MergePolicy) Option {
	return func(r *Recognizer) {
		r.policy = policy
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recognizer) {
		r.logger = logger
	}
}

// New returns a Recognizer labelling rows of color filter as model.TeamSuits
// and resolving classes through classes.
func New(filter model.Color, classes ClassResolver, opts ...Option) *Recognizer {
	r := &Recognizer{
		classes:    classes,
		filter:     filter,
		enemyLabel: model.DefaultEnemyLabel,
		policy:     KeepFirst,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.aliases == nil {
		r.aliases = parser.DefaultAliasTable()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Recognize parses text, one leaderboard row per line, stamping every
// player with date.
func (r *Recognizer) Recognize(text, date string) Result {
	builder := NewBuilder(r.aliases, parser.NewTeamAssigner(r.filter, r.enemyLabel), date)
	set := NewRecordSet(r.policy)

	var res Result
	for i, raw := range strings.Split(norm.NFC.String(text), "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		res.Lines++

		b := builder.Build(raw)
		switch b.Outcome {
		case OutcomeDiscarded:
			res.Discarded++
			r.logger.Debug("line discarded", "line_no", i+1, "line", raw)
		case OutcomeMalformed:
			res.Diagnostics = append(res.Diagnostics, model.Diagnostic{
				Kind:  model.DiagnosticMalformed,
				Line:  i + 1,
				Text:  parser.CleanLine(raw),
				Cells: b.Cells,
			})
			r.logger.Debug("malformed line", "line_no", i+1, "cells", b.Cells, "line", raw)
		case OutcomeBuilt:
			set.Add(b.Player)
		}
	}

	players := set.Players()
	if r.classes != nil {
		for _, p := range players {
			p.Class = r.classes.Lookup(p.Name)
		}
	}
	SortByKills(players)

	res.Players = players
	res.Duplicates = set.Duplicates()
	return res
}
