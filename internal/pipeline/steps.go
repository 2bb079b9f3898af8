package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/recognize"
	"github.com/nao1215/thronescan/internal/validate"
)

// ErrNoText is returned when no input produced any text.
var ErrNoText = errors.New("no text extracted from any input")

// ExtractStep fills the batch with the text of its input files.
type ExtractStep struct {
	// extractor reads the files with its OCR engine.
	extractor *Extractor

	// paths are the input files, in the order their text is joined.
	paths []string

	// logger is used for structured logging during the step.
	logger *slog.Logger
}

// NewExtractStep returns a step extracting text from paths.
func NewExtractStep(extractor *Extractor, paths []string, logger *slog.Logger) *ExtractStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStep{extractor: extractor, paths: paths, logger: logger}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do runs the extractor and aggregates its output into batch.RawText.
func (s *ExtractStep) Do(ctx context.Context, batch *model.Batch) error {
	sources, err := s.extractor.Extract(ctx, s.paths)
	batch.Sources = sources
	if err != nil {
		return err
	}

	batch.RawText = JoinSources(sources)
	if batch.RawText == "" {
		return ErrNoText
	}
	batch.ComputeFingerprint()

	s.logger.Debug("text aggregated", "sources", len(sources), "bytes", len(batch.RawText))
	return nil
}

// RecognizeStep turns the batch text into players and malformed-line
// diagnostics.
type RecognizeStep struct {
	recognizer *recognize.Recognizer
	logger     *slog.Logger
}

// NewRecognizeStep returns a step running recognizer over the batch text.
func NewRecognizeStep(recognizer *recognize.Recognizer, logger *slog.Logger) *RecognizeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecognizeStep{recognizer: recognizer, logger: logger}
}

// Name returns the step name.
func (s *RecognizeStep) Name() string {
	return "recognize"
}

// Do recognizes players in batch.RawText.
func (s *RecognizeStep) Do(_ context.Context, batch *model.Batch) error {
	res := s.recognizer.Recognize(batch.RawText, batch.Date)
	batch.Players = res.Players
	batch.Diagnostics = append(batch.Diagnostics, res.Diagnostics...)

	s.logger.Info("lines recognized",
		"lines", res.Lines,
		"players", len(res.Players),
		"malformed", len(res.Diagnostics),
		"discarded", res.Discarded,
		"duplicates", res.Duplicates,
	)
	return nil
}

// ValidateStep flags implausible players.
type ValidateStep struct {
	validator *validate.Validator
}

// NewValidateStep returns a step running validator over the batch players.
func NewValidateStep(validator *validate.Validator) *ValidateStep {
	return &ValidateStep{validator: validator}
}

// Name returns the step name.
func (s *ValidateStep) Name() string {
	return "validate"
}

// Do validates batch.Players.
func (s *ValidateStep) Do(_ context.Context, batch *model.Batch) error {
	report := s.validator.Validate(batch.Players)
	batch.Warnings = append(batch.Warnings, report.Warnings...)
	batch.Diagnostics = append(batch.Diagnostics, report.Diagnostics...)
	return nil
}

// DefaultPipeline returns a pipeline that takes its text from source, then
// recognizes and validates players.
func DefaultPipeline(source Step, recognizer *recognize.Recognizer, validator *validate.Validator, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		source,
		NewRecognizeStep(recognizer, p.logger),
		NewValidateStep(validator),
	)
	return p
}
