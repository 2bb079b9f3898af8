package model

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// Source is the OCR outcome of one input file.
type Source struct {
	// Path is the image or text file the text came from.
	Path string `json:"path"`

	// Text is the raw OCR text. Empty when extraction failed.
	Text string `json:"-"`

	// ErrorMessage is set when extraction of this source failed.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// Batch is the unit of work for one run: every screenshot of one match,
// the text extracted from them and everything derived from that text.
type Batch struct {
	// ID is the database identifier, zero until the batch is stored.
	ID int64 `json:"id,omitempty"`

	// Date is the timestamp string attached to every player of the batch.
	Date string `json:"date"`

	// FilterColor is the color whose rows are labelled TeamSuits.
	FilterColor Color `json:"filter_color"`

	// EnemyLabel is the team label for rows of any other color.
	EnemyLabel string `json:"enemy_label"`

	// Sources lists the inputs in submission order.
	Sources []Source `json:"sources,omitempty"`

	// RawText is the aggregated OCR text the recognizer runs over.
	RawText string `json:"-"`

	// Fingerprint is a SHA3-256 digest of RawText, used to spot re-imports.
	Fingerprint string `json:"fingerprint,omitempty"`

	// Players holds the deduplicated valid records sorted by kills.
	Players []*Player `json:"players"`

	// Diagnostics holds malformed lines, unknown-class players and
	// anomaly-flagged players, in that order of discovery.
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// Warnings holds every rule violation found by the validator.
	Warnings []Warning `json:"warnings,omitempty"`

	// PerformedSteps records the pipeline steps that ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`

	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewBatch creates an empty batch for the given date and filter color.
func NewBatch(date string, filter Color, enemyLabel string) *Batch {
	if enemyLabel == "" {
		enemyLabel = DefaultEnemyLabel
	}
	return &Batch{
		Date:        date,
		FilterColor: filter,
		EnemyLabel:  enemyLabel,
		Players:     make([]*Player, 0),
		StartedAt:   time.Now(),
	}
}

// ComputeFingerprint sets Fingerprint from RawText.
func (b *Batch) ComputeFingerprint() {
	if b.RawText == "" {
		b.Fingerprint = ""
		return
	}
	sum := sha3.Sum256([]byte(b.RawText))
	b.Fingerprint = hex.EncodeToString(sum[:])
}

// DiagnosticsOf returns the diagnostics of the given kind, in order.
func (b *Batch) DiagnosticsOf(kind DiagnosticKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range b.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Summary is a count-only view of a batch.
type Summary struct {
	Players      int `json:"players"`
	Suits        int `json:"suits"`
	Enemies      int `json:"enemies"`
	Malformed    int `json:"malformed"`
	UnknownClass int `json:"unknown_class"`
	Flagged      int `json:"flagged"`
	Warnings     int `json:"warnings"`
	FailedImages int `json:"failed_images"`
}

// Summarize counts players, diagnostics and warnings of the batch.
func (b *Batch) Summarize() Summary {
	s := Summary{
		Players:  len(b.Players),
		Warnings: len(b.Warnings),
	}
	for _, p := range b.Players {
		if p.Team == TeamSuits {
			s.Suits++
		} else {
			s.Enemies++
		}
	}
	for _, d := range b.Diagnostics {
		switch d.Kind {
		case DiagnosticMalformed:
			s.Malformed++
		case DiagnosticUnknownClass:
			s.UnknownClass++
		case DiagnosticAnomaly:
			s.Flagged++
		}
	}
	for _, src := range b.Sources {
		if src.ErrorMessage != "" {
			s.FailedImages++
		}
	}
	return s
}
