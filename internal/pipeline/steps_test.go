package pipeline

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/recognize"
	"github.com/nao1215/thronescan/internal/registry"
	"github.com/nao1215/thronescan/internal/validate"
)

const testDate = "2025-03-01 21:00:00"

const leaderboard = `28 | PT (Fate x | TurboDedek | Jaune | 13 | 40 | 1343286 | 703574 | 23911
Triber | Jaune |  o | 90 | 513 371 | 1319237 | 2566961
header without any marker
Broken | Rouge | 1 | 2`

func newTestRecognizer() *recognize.Recognizer {
	classes := registry.New()
	classes.Set("Turbodedek", "dps")
	classes.Set("Triber", "dps")
	return recognize.New(model.ColorYellow, classes)
}

// TestExtractStep tests text aggregation from files.
func TestExtractStep(t *testing.T) {
	t.Parallel()

	t.Run("joins text from every file", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{texts: map[string]string{"a.png": "first", "b.png": "second"}}
		step := NewExtractStep(NewExtractor(engine), []string{"a.png", "b.png"}, nil)

		batch := model.NewBatch(testDate, model.ColorYellow, "")
		if err := step.Do(context.Background(), batch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.RawText != "first\nsecond" {
			t.Errorf("RawText = %q", batch.RawText)
		}
		if len(batch.Sources) != 2 {
			t.Errorf("expected 2 sources, got %d", len(batch.Sources))
		}
	})

	t.Run("fails when no file produced text", func(t *testing.T) {
		t.Parallel()

		engine := &fakeEngine{errs: map[string]error{"a.png": errors.New("unreadable")}}
		step := NewExtractStep(NewExtractor(engine), []string{"a.png"}, nil)

		batch := model.NewBatch(testDate, model.ColorYellow, "")
		err := step.Do(context.Background(), batch)
		if !errors.Is(err, ErrNoText) {
			t.Errorf("expected ErrNoText, got %v", err)
		}
		if len(batch.Sources) != 1 || batch.Sources[0].ErrorMessage == "" {
			t.Error("expected failed source to be recorded")
		}
	})
}

// TestDefaultPipeline tests the full text to players flow.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{texts: map[string]string{"board.txt": leaderboard}}
	source := NewExtractStep(NewExtractor(engine), []string{"board.txt"}, nil)
	p := DefaultPipeline(source, newTestRecognizer(), validate.New())

	batch := model.NewBatch(testDate, model.ColorYellow, "")
	if err := p.Execute(context.Background(), batch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batch.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(batch.Players))
	}
	if batch.Players[0].Name != "TurboDedek" || batch.Players[0].Team != model.TeamSuits {
		t.Errorf("unexpected first player: %+v", batch.Players[0])
	}
	if batch.Players[1].Class != "dps" {
		t.Errorf("expected dps class, got %q", batch.Players[1].Class)
	}
	if got := len(batch.DiagnosticsOf(model.DiagnosticMalformed)); got != 1 {
		t.Errorf("expected 1 malformed line, got %d", got)
	}
	// Triber is a damage dealer with no kills.
	if len(batch.Warnings) != 1 || batch.Warnings[0].Rule != model.RuleDamageDealerKillsLow {
		t.Errorf("unexpected warnings: %+v", batch.Warnings)
	}
	want := []string{"extract", "recognize", "validate"}
	if !slices.Equal(batch.PerformedSteps, want) {
		t.Errorf("PerformedSteps = %v, want %v", batch.PerformedSteps, want)
	}
}
