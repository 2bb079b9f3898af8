package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/thronescan/internal/model"
	"github.com/nao1215/thronescan/internal/ocr"
)

// Extractor runs an OCR engine over many files with bounded concurrency.
// Results are returned in submission order whatever order the workers
// finish in, so line positions in the aggregated text are reproducible.
type Extractor struct {
	// engine turns one file into text.
	engine ocr.Engine

	// concurrency is the maximum number of files read at once.
	concurrency int

	// logger is used for structured logging during extraction.
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithConcurrency sets the number of files processed at once.
// Non-positive values keep the default of one worker per CPU.
func WithConcurrency(n int) ExtractorOption {
	return func(x *Extractor) {
		if n > 0 {
			x.concurrency = n
		}
	}
}

// WithExtractorLogger sets a custom logger.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(x *Extractor) {
		x.logger = logger
	}
}

// NewExtractor returns an Extractor using engine.
func NewExtractor(engine ocr.Engine, opts ...ExtractorOption) *Extractor {
	x := &Extractor{
		engine:      engine,
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(x)
	}
	if x.logger == nil {
		x.logger = slog.Default()
	}
	return x
}

// Extract runs the engine over paths. A failing file is logged and
// recorded in its Source; it never stops the others. The returned error is
// non-nil only when ctx is cancelled.
func (x *Extractor) Extract(ctx context.Context, paths []string) ([]model.Source, error) {
	x.logger.Info("starting text extraction",
		"engine", x.engine.Name(),
		"files", len(paths),
		"concurrency", x.concurrency,
	)
	start := time.Now()

	sources := make([]model.Source, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(x.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			text, err := x.engine.Extract(ctx, path)
			sources[i] = model.Source{Path: path, Text: text}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				sources[i].ErrorMessage = err.Error()
				x.logger.Warn("text extraction failed", "file", path, "error", err)
				return nil
			}
			if strings.TrimSpace(text) == "" {
				x.logger.Warn("no text extracted", "file", path)
			}
			x.logger.Debug("text extracted", "file", path, "index", i+1, "total", len(paths), "raw", text)
			return nil
		})
	}

	err := g.Wait()
	x.logger.Info("text extraction complete",
		"files", len(paths),
		"elapsed", time.Since(start),
	)
	return sources, err
}

// JoinSources concatenates the text of every source in order, one source
// per block, separated by newlines.
func JoinSources(sources []model.Source) string {
	var b strings.Builder
	for _, src := range sources {
		if src.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(src.Text)
	}
	return b.String()
}
