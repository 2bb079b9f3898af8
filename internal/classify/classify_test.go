package classify

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/parser"
	"github.com/nao1215/thronescan/internal/registry"
)

func newTestClassifier() *Classifier {
	classes := registry.New()
	classes.Set("Requiem", "tank")
	classes.Set("Listrinda", "healer")
	return New(classes)
}

// TestClassifierApply tests row rewriting.
func TestClassifierApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		want      string
		wantStats Stats
	}{
		{
			name:      "replaces class of full rows",
			input:     "2025-03-01 21:00:00,Suits,Listrinda,UNKNOWN,1,16,407594,969239,58864\n",
			want:      "2025-03-01 21:00:00,Suits,Listrinda,healer,1,16,407594,969239,58864\n",
			wantStats: Stats{Rows: 1, Updated: 1},
		},
		{
			name:      "resolves aliases",
			input:     "2025-03-01 21:00:00,Enemy,Requrem,UNKNOWN,3,10,1,2,3\n",
			want:      "2025-03-01 21:00:00,Enemy,Requiem,tank,3,10,1,2,3\n",
			wantStats: Stats{Rows: 1, Updated: 1},
		},
		{
			name:      "inserts class into legacy rows",
			input:     "2025-03-01 21:00:00,Enemy,Listrinda,1,16,407594,969239,58864\n",
			want:      "2025-03-01 21:00:00,Enemy,Listrinda,healer,1,16,407594,969239,58864\n",
			wantStats: Stats{Rows: 1, Updated: 1},
		},
		{
			name:      "counts unknown players",
			input:     "2025-03-01 21:00:00,Enemy,Stranger,dps,1,2,3,4,5\n",
			want:      "2025-03-01 21:00:00,Enemy,Stranger,UNKNOWN,1,2,3,4,5\n",
			wantStats: Stats{Rows: 1, Updated: 1, Unknown: 1},
		},
		{
			name:      "copies other rows",
			input:     "date,team,name,class,kills,assists,damageDone,damageReceived,healing\nshort,row\n",
			want:      "date,team,name,class,kills,assists,damageDone,damageReceived,healing\nshort,row\n",
			wantStats: Stats{Rows: 2, Copied: 2},
		},
		{
			name:      "empty input",
			input:     "",
			want:      "",
			wantStats: Stats{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			stats, err := newTestClassifier().Apply(strings.NewReader(tt.input), &out)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out.String() != tt.want {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
			if stats != tt.wantStats {
				t.Errorf("stats = %+v, want %+v", stats, tt.wantStats)
			}
		})
	}

	t.Run("uses custom aliases", func(t *testing.T) {
		t.Parallel()

		aliases := parser.NewAliasTable()
		aliases.Add("Listrinda", "iistrinda")

		classes := registry.New()
		classes.Set("Listrinda", "healer")

		var out bytes.Buffer
		_, err := New(classes, WithAliases(aliases)).Apply(strings.NewReader("d,Suits,Iistrinda,UNKNOWN,1,2,3,4,5\n"), &out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.String() != "d,Suits,Listrinda,healer,1,2,3,4,5\n" {
			t.Errorf("output = %q", out.String())
		}
	})
}

// TestOutputPath tests output naming.
func TestOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "output.csv", want: "output_with_classes.csv"},
		{in: filepath.Join("wg", "1", "output.csv"), want: filepath.Join("wg", "1", "output_with_classes.csv")},
		{in: "output", want: "output_with_classes.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := OutputPath(tt.in); got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestApplyFile tests classification on disk.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "output.csv")
	content := "2025-03-01 21:00:00,Suits,Listrinda,UNKNOWN,1,16,407594,969239,58864\n"
	if err := os.WriteFile(input, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	outPath, stats, err := newTestClassifier().ApplyFile(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outPath != filepath.Join(dir, "output_with_classes.csv") {
		t.Errorf("outPath = %q", outPath)
	}
	if stats.Updated != 1 {
		t.Errorf("stats = %+v", stats)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), ",healer,") {
		t.Errorf("unexpected output: %q", data)
	}

	if _, _, err := newTestClassifier().ApplyFile(filepath.Join(dir, "missing.csv")); err == nil {
		t.Error("expected error for missing input")
	}
}

// TestFindOutputs tests batch folder discovery.
func TestFindOutputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, sub := range []string{"b", "a", "empty"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o750); err != nil {
			t.Fatal(err)
		}
	}
	for _, sub := range []string{"a", "b"} {
		if err := os.WriteFile(filepath.Join(dir, sub, "output.csv"), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "output.csv"), nil, 0o600); err != nil {
		t.Fatal(err)
	}

	paths, err := FindOutputs(dir, "output.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{filepath.Join(dir, "a", "output.csv"), filepath.Join(dir, "b", "output.csv")}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, paths[i], want[i])
		}
	}
}

// TestRowWidths pins the full and legacy row widths to the CSV header.
func TestRowWidths(t *testing.T) {
	t.Parallel()

	if legacyWidth != len(model.CSVHeader)-1 {
		t.Errorf("legacyWidth = %d, want %d", legacyWidth, len(model.CSVHeader)-1)
	}
	if legacyWidth != 8 {
		t.Errorf("legacyWidth = %d, want 8", legacyWidth)
	}
}
