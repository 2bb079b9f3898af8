package config

import (
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/ocr"
	"github.com/nao1215/thronescan/internal/recognize"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "thronescan"

	// DefaultOutputFile receives the accepted players.
	DefaultOutputFile = "output.csv"

	// DefaultDiagnosticsFile receives malformed lines, unknown-class
	// players and flagged players.
	DefaultDiagnosticsFile = "errors.csv"

	// DefaultRawTextFile receives the aggregated OCR text so a run can be
	// replayed with --from-text.
	DefaultRawTextFile = "tesseract_output.txt"

	// DefaultRegistryFile is the name to class CSV.
	DefaultRegistryFile = "class.csv"

	// DateLayout is the layout every player date is normalized to.
	DateLayout = "2006-01-02 15:04:05"
)

// Config holds all options of a processing run. It is built from CLI
// flags, optionally seeded from a configuration file, and passed down
// explicitly.
type Config struct {
	// ImageDir is the folder of leaderboard screenshots.
	ImageDir string

	// TextFiles are saved OCR text files processed instead of images.
	TextFiles []string

	// Language is the Tesseract language, e.g. "eng" or "eng+fra".
	Language string

	// TessdataDir is the Tesseract language data directory. When empty
	// the TESSDATA_PREFIX environment variable applies.
	TessdataDir string

	// FilterColor marks the friendly team.
	FilterColor model.Color

	// EnemyLabel is the team name given to players of the other color.
	EnemyLabel string

	// Date is stamped on every player, in DateLayout. When empty the
	// capture time of the earliest screenshot is used, else the current
	// time.
	Date string

	OutputFile      string
	DiagnosticsFile string

	// RawTextFile receives the aggregated text. Empty disables it.
	RawTextFile string

	RegistryFile string

	// Workers is the number of images recognized at once.
	Workers int

	// MergePolicy decides which record wins when a name repeats.
	MergePolicy recognize.MergePolicy

	// JSONReport and MarkdownReport select the summary format. They are
	// mutually exclusive; with neither a plain text summary is printed.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is where the summary goes instead of stdout.
	ReportFile string

	// TeeReport prints the summary to stdout as well when ReportFile is set.
	TeeReport bool

	// SaveToDB records the batch in the history database under DBDir.
	SaveToDB bool
	DBDir    string

	// Verbose enables Debug logging.
	Verbose bool

	// LogJSON switches log records on stderr to JSON.
	LogJSON bool

	// ConfigFilePath is an explicit configuration file. When empty the
	// locations listed by FindConfigFile are searched.
	ConfigFilePath string

	// Rules holds what was loaded from the configuration file.
	Rules *File
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Language:        ocr.DefaultLanguage,
		FilterColor:     model.ColorYellow,
		EnemyLabel:      model.DefaultEnemyLabel,
		OutputFile:      DefaultOutputFile,
		DiagnosticsFile: DefaultDiagnosticsFile,
		RawTextFile:     DefaultRawTextFile,
		RegistryFile:    DefaultRegistryFile,
		Workers:         runtime.NumCPU(),
		MergePolicy:     recognize.KeepFirst,
		SaveToDB:        true,
		DBDir:           XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for thronescan, where the
// history database lives.
// On Linux: ~/.local/share/thronescan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for thronescan, searched
// for XDGConfigFile.
// On Linux: ~/.config/thronescan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.ImageDir == "" && len(c.TextFiles) == 0 {
		return ErrNoInput
	}
	if c.ImageDir != "" && len(c.TextFiles) > 0 {
		return ErrConflictingInputs
	}
	if c.FilterColor != model.ColorYellow && c.FilterColor != model.ColorRed {
		return ErrInvalidColor
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.OutputFile == "" || c.DiagnosticsFile == "" {
		return ErrNoOutput
	}
	if c.Date != "" {
		if _, err := time.Parse(DateLayout, c.Date); err != nil {
			return ErrInvalidDate
		}
	}
	return nil
}

// NormalizeDate accepts "yyyy-MM-dd", "yyyy-MM-dd HH:mm" or
// "yyyy-MM-dd HH:mm:ss" and returns the date in DateLayout.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", ErrInvalidDate
}

// FormatDate formats t in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
