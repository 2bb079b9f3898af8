package model

import "fmt"

// DiagnosticKind categorizes an entry of the diagnostics stream.
type DiagnosticKind int

const (
	// DiagnosticMalformed is a line whose color marker and name were found
	// but whose numeric cell count was not StatCount.
	DiagnosticMalformed DiagnosticKind = iota

	// DiagnosticUnknownClass is a structurally valid player whose name is
	// missing from the class registry.
	DiagnosticUnknownClass

	// DiagnosticAnomaly is a player that tripped at least one plausibility rule.
	DiagnosticAnomaly
)

// String returns a short machine-friendly name for the kind.
func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticMalformed:
		return "malformed"
	case DiagnosticUnknownClass:
		return "unknown_class"
	case DiagnosticAnomaly:
		return "anomaly"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds serialize by name.
func (k DiagnosticKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *DiagnosticKind) UnmarshalText(text []byte) error {
	for _, kind := range []DiagnosticKind{DiagnosticMalformed, DiagnosticUnknownClass, DiagnosticAnomaly} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind %q", text)
}

// Diagnostic is one entry routed to the diagnostics sink.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind"`

	// Line is the 1-based position of the source line in the aggregated OCR
	// text. Zero for diagnostics raised after parsing.
	Line int `json:"line,omitempty"`

	// Text is the lightly cleaned raw line for malformed entries.
	Text string `json:"text,omitempty"`

	// Cells is the number of pipe-separated cells the raw line had.
	Cells int `json:"cells,omitempty"`

	// Player is set for unknown-class and anomaly entries.
	Player *Player `json:"player,omitempty"`

	// Warnings lists the rules an anomaly entry violated.
	Warnings []Warning `json:"warnings,omitempty"`
}
