package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/adrg/xdg"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/recognize"
)

// TestNewConfig verifies the default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default files", func(t *testing.T) {
		t.Parallel()
		if cfg.OutputFile != "output.csv" {
			t.Errorf("OutputFile = %q", cfg.OutputFile)
		}
		if cfg.DiagnosticsFile != "errors.csv" {
			t.Errorf("DiagnosticsFile = %q", cfg.DiagnosticsFile)
		}
		if cfg.RawTextFile != "tesseract_output.txt" {
			t.Errorf("RawTextFile = %q", cfg.RawTextFile)
		}
		if cfg.RegistryFile != "class.csv" {
			t.Errorf("RegistryFile = %q", cfg.RegistryFile)
		}
	})

	t.Run("default recognition settings", func(t *testing.T) {
		t.Parallel()
		if cfg.Language != "eng" {
			t.Errorf("Language = %q", cfg.Language)
		}
		if cfg.FilterColor != model.ColorYellow {
			t.Errorf("FilterColor = %q", cfg.FilterColor)
		}
		if cfg.EnemyLabel != "Enemy" {
			t.Errorf("EnemyLabel = %q", cfg.EnemyLabel)
		}
		if cfg.MergePolicy != recognize.KeepFirst {
			t.Errorf("MergePolicy = %v", cfg.MergePolicy)
		}
		if cfg.Workers != runtime.NumCPU() {
			t.Errorf("Workers = %d", cfg.Workers)
		}
	})

	t.Run("history enabled in the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("DBDir = %q", cfg.DBDir)
		}
	})
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.ImageDir = "screens"
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid image folder", modify: func(*Config) {}},
		{
			name: "valid text files",
			modify: func(c *Config) {
				c.ImageDir = ""
				c.TextFiles = []string{"a.txt"}
			},
		},
		{name: "no input", modify: func(c *Config) { c.ImageDir = "" }, wantErr: ErrNoInput},
		{
			name:    "both inputs",
			modify:  func(c *Config) { c.TextFiles = []string{"a.txt"} },
			wantErr: ErrConflictingInputs,
		},
		{name: "unknown color", modify: func(c *Config) { c.FilterColor = model.ColorUnknown }, wantErr: ErrInvalidColor},
		{name: "empty color", modify: func(c *Config) { c.FilterColor = "" }, wantErr: ErrInvalidColor},
		{name: "zero workers", modify: func(c *Config) { c.Workers = 0 }, wantErr: ErrInvalidWorkers},
		{
			name: "json and markdown",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{name: "no output file", modify: func(c *Config) { c.OutputFile = "" }, wantErr: ErrNoOutput},
		{name: "unnormalized date", modify: func(c *Config) { c.Date = "2025-03-01" }, wantErr: ErrInvalidDate},
		{name: "normalized date", modify: func(c *Config) { c.Date = "2025-03-01 21:00:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestNormalizeDate tests the accepted date layouts.
func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2025-03-01", want: "2025-03-01 00:00:00"},
		{in: "2025-03-01 21:30", want: "2025-03-01 21:30:00"},
		{in: "2025-03-01 21:30:15", want: "2025-03-01 21:30:15"},
		{in: "  2025-03-01  ", want: "2025-03-01 00:00:00"},
		{in: "01/03/2025", wantErr: true},
		{in: "2025-13-01", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeDate(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Errorf("expected ErrInvalidDate, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestLoadConfigFile tests YAML loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads every field", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".thronescan")
		content := `aliases:
  Listrinda: [listrlnda, iistrinda]
enemy_label: Ennemi
merge_policy: keep-last
language: eng+fra
registry: roster.csv
color: red
workers: 2
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cf.Aliases["Listrinda"]) != 2 {
			t.Errorf("Aliases = %v", cf.Aliases)
		}
		if cf.EnemyLabel != "Ennemi" || cf.MergePolicy != "keep-last" || cf.Language != "eng+fra" {
			t.Errorf("unexpected file: %+v", cf)
		}
		if cf.Registry != "roster.csv" || cf.Color != "red" || cf.Workers != 2 {
			t.Errorf("unexpected file: %+v", cf)
		}
	})

	t.Run("empty file initializes aliases", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".thronescan")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Aliases == nil {
			t.Error("expected Aliases to be initialized")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".thronescan")
		if err := os.WriteFile(path, []byte("aliases: [unterminated"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestFindConfigFile tests configuration discovery with an explicit path.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, nil, 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})

	t.Run("search order", func(t *testing.T) {
		t.Parallel()

		paths := searchPaths()
		xdgPath := filepath.Join(XDGConfigDir(), XDGConfigFile)
		idx := slices.Index(paths, xdgPath)
		if idx < 0 {
			t.Fatalf("searchPaths() = %v, missing %q", paths, xdgPath)
		}
		if idx > 0 && filepath.Base(paths[idx-1]) != DefaultConfigFile {
			t.Errorf("expected the working directory before the XDG path: %v", paths)
		}
		if idx < len(paths)-1 && filepath.Base(paths[idx+1]) != DefaultConfigFile {
			t.Errorf("expected the home directory after the XDG path: %v", paths)
		}
	})
}

// TestFindConfigFileXDG tests discovery in the XDG config directory.
func TestFindConfigFileXDG(t *testing.T) {
	t.Cleanup(xdg.Reload)

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("HOME", t.TempDir())
	xdg.Reload()

	if got := FindConfigFile(""); got != "" {
		t.Fatalf("FindConfigFile() = %q before any file exists", got)
	}

	path := filepath.Join(configHome, AppName, XDGConfigFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("language: fra\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := FindConfigFile(""); got != path {
		t.Errorf("FindConfigFile() = %q, want %q", got, path)
	}
}

// TestFileApply tests seeding a Config from a File.
func TestFileApply(t *testing.T) {
	t.Parallel()

	t.Run("nil file changes nothing", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		var f *File
		if err := f.Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Rules != nil {
			t.Error("expected Rules to stay nil")
		}
	})

	t.Run("copies set values", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{
			EnemyLabel:  "Ennemi",
			MergePolicy: "last",
			Language:    "fra",
			Registry:    "roster.csv",
			Color:       "rouge",
			Workers:     3,
			Tessdata:    "/opt/tessdata",
		}
		if err := f.Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.EnemyLabel != "Ennemi" || cfg.Language != "fra" || cfg.RegistryFile != "roster.csv" {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.FilterColor != model.ColorRed || cfg.MergePolicy != recognize.KeepLast || cfg.Workers != 3 {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if cfg.TessdataDir != "/opt/tessdata" {
			t.Errorf("TessdataDir = %q", cfg.TessdataDir)
		}
		if cfg.Rules != f {
			t.Error("expected Rules to point at the file")
		}
	})

	t.Run("keeps defaults for unset values", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := (&File{}).Apply(cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.EnemyLabel != model.DefaultEnemyLabel || cfg.Language != "eng" {
			t.Errorf("defaults changed: %+v", cfg)
		}
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		t.Parallel()

		if err := (&File{Color: "blue"}).Apply(NewConfig()); !errors.Is(err, ErrInvalidColor) {
			t.Errorf("expected ErrInvalidColor, got %v", err)
		}
		if err := (&File{MergePolicy: "random"}).Apply(NewConfig()); !errors.Is(err, ErrInvalidMergePolicy) {
			t.Errorf("expected ErrInvalidMergePolicy, got %v", err)
		}
	})
}

// TestFileAliasTable tests alias merging.
func TestFileAliasTable(t *testing.T) {
	t.Parallel()

	t.Run("nil file yields built-in aliases", func(t *testing.T) {
		t.Parallel()

		var f *File
		if got, ok := f.AliasTable().Lookup("requrem"); !ok || got != "Requiem" {
			t.Errorf("Lookup(requrem) = %q, %v", got, ok)
		}
	})

	t.Run("adds file aliases", func(t *testing.T) {
		t.Parallel()

		f := &File{Aliases: map[string][]string{
			"Listrinda": {"listrlnda"},
			"  ":        {"ignored"},
		}}
		table := f.AliasTable()

		if got, ok := table.Lookup("LISTRLNDA"); !ok || got != "Listrinda" {
			t.Errorf("Lookup(LISTRLNDA) = %q, %v", got, ok)
		}
		if _, ok := table.Lookup("ignored"); ok {
			t.Error("blank canonical names should be skipped")
		}
		if _, ok := table.Lookup("requrem"); !ok {
			t.Error("built-in aliases should be kept")
		}
	})
}

// TestXDGDirs tests the XDG directory helpers.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("%s dir %q does not end with %q", name, dir, AppName)
		}
	}
}
