package recognize

import (
	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/parser"
)

// Outcome tells what the builder made of one line.
type Outcome int

const (
	// OutcomeDiscarded means the line had no usable structure: no color
	// marker, a marker in the first cell, or an empty name.
	OutcomeDiscarded Outcome = iota

	// OutcomeMalformed means name and marker were found but the line did
	// not carry exactly model.StatCount numeric cells.
	OutcomeMalformed

	// OutcomeBuilt means a valid player was produced.
	OutcomeBuilt
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeBuilt:
		return "built"
	default:
		return "unknown"
	}
}

// Build is the result of building one line.
type Build struct {
	Outcome Outcome
	Player  *model.Player
	Cells   int
}

// Builder turns single lines into players.
type Builder struct {
	aliases *parser.AliasTable
	teams   *parser.TeamAssigner
	date    string
}

// NewBuilder returns a builder resolving names with aliases, labelling teams
// with teams and stamping every player with date.
func NewBuilder(aliases *parser.AliasTable, teams *parser.TeamAssigner, date string) *Builder {
	return &Builder{aliases: aliases, teams: teams, date: date}
}

// Build parses one raw line.
func (b *Builder) Build(raw string) Build {
	line, ok := parser.ParseLine(raw)
	if !ok {
		return Build{Outcome: OutcomeDiscarded, Cells: len(parser.SplitCells(raw))}
	}

	name := parser.ResolveName(line.NameCell, b.aliases)
	if name == "" {
		return Build{Outcome: OutcomeDiscarded, Cells: len(line.Cells)}
	}

	if len(line.NumericCells) != model.StatCount {
		return Build{Outcome: OutcomeMalformed, Cells: len(line.Cells)}
	}

	var stats [model.StatCount]int64
	for i, cell := range line.NumericCells {
		stats[i] = parser.ParseNumeric(cell)
	}

	return Build{
		Outcome: OutcomeBuilt,
		Player:  model.NewPlayer(name, b.teams.Assign(line.ColorCell), b.date, stats),
		Cells:   len(line.Cells),
	}
}
