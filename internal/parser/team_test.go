package parser

import (
	"testing"

	"github.com/nao1215/thronescan/internal/model"
)

// TestDetectColor tests color detection from a color cell.
func TestDetectColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cell string
		want model.Color
	}{
		{"Rouge", model.ColorRed},
		{"RED", model.ColorRed},
		{"Jaune", model.ColorYellow},
		{"yellow", model.ColorYellow},
		{"bleu", model.ColorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			t.Parallel()
			if got := DetectColor(tt.cell); got != tt.want {
				t.Errorf("DetectColor(%q) = %q, want %q", tt.cell, got, tt.want)
			}
		})
	}
}

// TestTeamAssigner tests team labelling against the filter color.
func TestTeamAssigner(t *testing.T) {
	t.Parallel()

	t.Run("matching color is Suits", func(t *testing.T) {
		t.Parallel()
		a := NewTeamAssigner(model.ColorYellow, "")
		if got := a.Assign("Jaune"); got != model.TeamSuits {
			t.Errorf("got %q", got)
		}
		if got := a.Assign("Rouge"); got != model.DefaultEnemyLabel {
			t.Errorf("got %q", got)
		}
	})

	t.Run("custom enemy label", func(t *testing.T) {
		t.Parallel()
		a := NewTeamAssigner(model.ColorRed, "Horde")
		if got := a.Assign("yellow"); got != "Horde" {
			t.Errorf("got %q", got)
		}
		if got := a.Assign("red"); got != model.TeamSuits {
			t.Errorf("got %q", got)
		}
	})
}
