package parser

import (
	"strings"

	"github.com/nao1215/thronescan/internal/model"
)

// DetectColor reads the team color out of a color cell. Red wins when a
// cell somehow mentions both colors.
func DetectColor(cell string) model.Color {
	c := strings.ToLower(cell)
	switch {
	case strings.Contains(c, "rouge"), strings.Contains(c, "red"):
		return model.ColorRed
	case strings.Contains(c, "jaune"), strings.Contains(c, "yellow"):
		return model.ColorYellow
	default:
		return model.ColorUnknown
	}
}

// TeamAssigner labels rows by comparing their color with the filter color.
type TeamAssigner struct {
	filter     model.Color
	enemyLabel string
}

// NewTeamAssigner returns an assigner that labels rows of the filter color
// model.TeamSuits and every other row enemyLabel. An empty enemyLabel
// falls back to model.DefaultEnemyLabel.
func NewTeamAssigner(filter model.Color, enemyLabel string) *TeamAssigner {
	if enemyLabel == "" {
		enemyLabel = model.DefaultEnemyLabel
	}
	return &TeamAssigner{filter: filter, enemyLabel: enemyLabel}
}

// Assign returns the team label for a raw color cell.
func (a *TeamAssigner) Assign(colorCell string) string {
	if DetectColor(colorCell) == a.filter {
		return model.TeamSuits
	}
	return a.enemyLabel
}
