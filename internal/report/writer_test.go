package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/thronescan/internal/model"
)

const testDate = "2025-03-01 21:00:00"

// createTestBatch creates a batch with sample data for testing.
func createTestBatch() *model.Batch {
	batch := model.NewBatch(testDate, model.ColorYellow, "")
	batch.RawText = "raw | text"
	batch.ComputeFingerprint()
	batch.Sources = []model.Source{
		{Path: "a.png", Text: "raw | text"},
		{Path: "b.png", ErrorMessage: "cannot read image"},
	}

	suit := model.NewPlayer("TurboDedek", model.TeamSuits, testDate, [model.StatCount]int64{13, 40, 1343286, 703574, 23911})
	suit.Class = "dps"
	enemy := model.NewPlayer("Triber", model.DefaultEnemyLabel, testDate, [model.StatCount]int64{0, 90, 513371, 1319237, 2566961})
	enemy.Class = "dps"
	stranger := model.NewPlayer("Nobody", model.DefaultEnemyLabel, testDate, [model.StatCount]int64{1, 6, 20000, 250000, 0})
	batch.Players = []*model.Player{suit, enemy, stranger}

	warning := model.Warning{Rule: model.RuleDamageDealerKillsLow, Player: "Triber", Class: "dps", Value: 0}
	batch.Warnings = []model.Warning{warning}
	batch.Diagnostics = []model.Diagnostic{
		{Kind: model.DiagnosticMalformed, Line: 4, Text: "Broken Rouge 1 2", Cells: 4},
		{Kind: model.DiagnosticUnknownClass, Player: stranger},
		{Kind: model.DiagnosticAnomaly, Player: enemy, Warnings: []model.Warning{warning}},
	}
	return batch
}

// TestCSVWriter tests the main output writer.
func TestCSVWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes one row per player without header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewCSVWriter(&buf).Write(createTestBatch())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
		}

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d: %q", len(lines), buf.String())
		}
		want := "2025-03-01 21:00:00,Suits,TurboDedek,dps,13,40,1343286,703574,23911"
		if lines[0] != want {
			t.Errorf("first line = %q, want %q", lines[0], want)
		}
	})

	t.Run("empty batch writes nothing", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewCSVWriter(&buf).Write(model.NewBatch(testDate, model.ColorRed, "")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("expected empty output, got %q", buf.String())
		}
	})
}

// TestDiagnosticsWriter tests the three-section diagnostics layout.
func TestDiagnosticsWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sections in order", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewDiagnosticsWriter(&buf).Write(createTestBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := "Broken Rouge 1 2\n" +
			"\n\n" +
			"2025-03-01 21:00:00,Enemy,Nobody,UNKNOWN,1,6,20000,250000,0\n" +
			"\n\n" +
			"2025-03-01 21:00:00,Enemy,Triber,dps,0,90,513371,1319237,2566961\n"
		if buf.String() != want {
			t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
		}
	})

	t.Run("quotes player rows like the main output", func(t *testing.T) {
		t.Parallel()

		batch := model.NewBatch(testDate, model.ColorYellow, `Guild, "X"`)
		p := model.NewPlayer("Foo", `Guild, "X"`, testDate, [model.StatCount]int64{1, 6, 20000, 250000, 0})
		p.Class = model.ClassUnknown
		batch.Players = []*model.Player{p}
		batch.Diagnostics = []model.Diagnostic{{Kind: model.DiagnosticUnknownClass, Player: p}}

		var mainOut, diagOut bytes.Buffer
		if _, err := NewCSVWriter(&mainOut).Write(batch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewDiagnosticsWriter(&diagOut).Write(batch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		row := mainOut.String()
		if !strings.Contains(row, `"Guild, ""X"""`) {
			t.Fatalf("main output not quoted: %q", row)
		}
		want := "\n\n" + row + "\n\n"
		if diagOut.String() != want {
			t.Errorf("diagnostics = %q, want %q", diagOut.String(), want)
		}
	})

	t.Run("keeps separators when sections are empty", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewDiagnosticsWriter(&buf).Write(model.NewBatch(testDate, model.ColorRed, "")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.String() != "\n\n\n\n" {
			t.Errorf("got %q", buf.String())
		}
	})
}

// TestRawTextWriter tests the OCR text dump.
func TestRawTextWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewRawTextWriter(&buf).Write(createTestBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.String() != "raw | text" {
		t.Errorf("got %q", buf.String())
	}
}

// TestTextWriter tests the terminal summary.
func TestTextWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes summary sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf).Write(createTestBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"THRONESCAN BATCH SUMMARY",
			"Date:         2025-03-01 21:00:00",
			"Players:        3 (1 Suits, 2 Enemy)",
			"WARNINGS",
			"Triber",
			"UNKNOWN CLASS",
			"Nobody",
			"FAILED INPUTS",
			"b.png: cannot read image",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "MALFORMED LINES") {
			t.Error("malformed lines should only appear in verbose mode")
		}
	})

	t.Run("verbose lists malformed lines", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewTextWriter(&buf, WithVerbose(true)).Write(createTestBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Broken Rouge 1 2") {
			t.Error("expected malformed line in verbose output")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes all sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Thronescan Batch Report",
			"## Summary",
			"```mermaid",
			"Team Split",
			"## Players",
			"1,343,286",
			"## Warnings",
			"## Diagnostics",
			"Nobody (Enemy)",
			"### Unknown Class",
			"### Malformed Lines",
			"`Broken Rouge 1 2`",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("uses the configured enemy label", func(t *testing.T) {
		t.Parallel()

		batch := model.NewBatch(testDate, model.ColorYellow, `Guild "X"`)
		batch.Players = []*model.Player{
			model.NewPlayer("Foo", `Guild "X"`, testDate, [model.StatCount]int64{1, 6, 20000, 250000, 0}),
		}

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(batch); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, `"Guild 'X'" : 1`) {
			t.Errorf("expected chart slice for the enemy label, got:\n%s", output)
		}
		if !strings.Contains(output, `Players (Guild "X")`) {
			t.Errorf("expected count row for the enemy label, got:\n%s", output)
		}
		if strings.Contains(output, `"Enemy"`) {
			t.Error("default enemy label should not appear")
		}
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(model.NewBatch(testDate, model.ColorRed, "")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No players recognized.") {
			t.Error("expected empty players notice")
		}
		if strings.Contains(output, "```mermaid") {
			t.Error("expected no chart for an empty batch")
		}
	})
}

// TestJSONWriter tests the JSON writers.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["date"] != testDate {
			t.Errorf("date = %v", decoded["date"])
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected compact output on one line")
		}
	})

	t.Run("pretty prints", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"date\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps batch", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestBatch()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Version string        `json:"version"`
			Summary model.Summary `json:"summary"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Version != "v1.2.3" {
			t.Errorf("version = %q", decoded.Version)
		}
		if decoded.Summary.Players != 3 || decoded.Summary.Flagged != 1 || decoded.Summary.FailedImages != 1 {
			t.Errorf("unexpected summary: %+v", decoded.Summary)
		}
	})
}

// failingWriter is a Writer that always fails.
type failingWriter struct{ err error }

func (f failingWriter) Write(*model.Batch) (int, error) { return 0, f.err }

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var csvBuf, rawBuf bytes.Buffer
		mw := NewMultiWriter(NewCSVWriter(&csvBuf), NewRawTextWriter(&rawBuf))

		n, err := mw.Write(createTestBatch())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != csvBuf.Len()+rawBuf.Len() {
			t.Errorf("total %d, want %d", n, csvBuf.Len()+rawBuf.Len())
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("disk full")
		var buf bytes.Buffer
		mw := NewMultiWriter(failingWriter{err: wantErr}, NewRawTextWriter(&buf))

		if _, err := mw.Write(createTestBatch()); !errors.Is(err, wantErr) {
			t.Errorf("expected %v, got %v", wantErr, err)
		}
		if buf.Len() != 0 {
			t.Error("second writer should not have run")
		}
	})
}

// TestWriteFile tests writing to a new file in a new directory.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "batch", "output.csv")
	err := WriteFile(path, createTestBatch(), func(w io.Writer) Writer { return NewCSVWriter(w) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if strings.Count(string(data), "\n") != 3 {
		t.Errorf("unexpected content: %q", data)
	}
}
