package ocr

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the tesseract language used when none is configured.
const DefaultLanguage = "eng"

// TessdataEnv names the environment variable pointing at tesseract's
// language data directory.
const TessdataEnv = "TESSDATA_PREFIX"

// Engine turns one input file into raw text.
type Engine interface {
	// Extract returns the text of the file at path. Failures are *Error.
	Extract(ctx context.Context, path string) (string, error)

	// Name returns the engine name for logging.
	Name() string
}

// TesseractEngine extracts text with tesseract through gosseract.
// A new client is created per call, so one engine may serve many goroutines.
type TesseractEngine struct {
	// clientFactory creates the gosseract client of one extraction.
	clientFactory func() *gosseract.Client

	// languages are passed to tesseract in order.
	languages []string

	// tessdataPrefix overrides the language data directory when set.
	tessdataPrefix string

	// variables are set on every client before recognition.
	variables map[string]string
}

// TesseractOption configures a TesseractEngine.
type TesseractOption func(*TesseractEngine)

// WithLanguage sets the recognition language. Several languages may be
// joined with '+', as in "eng+fra".
func WithLanguage(lang string) TesseractOption {
	return func(e *TesseractEngine) {
		var langs []string
		for _, l := range strings.Split(lang, "+") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		if len(langs) > 0 {
			e.languages = langs
		}
	}
}

// WithTessdataPrefix sets the tessdata directory. An empty dir keeps the
// value of TESSDATA_PREFIX, if set.
func WithTessdataPrefix(dir string) TesseractOption {
	return func(e *TesseractEngine) {
		if dir != "" {
			e.tessdataPrefix = dir
		}
	}
}

// NewTesseractEngine returns a tesseract-backed engine.
func NewTesseractEngine(opts ...TesseractOption) *TesseractEngine {
	e := &TesseractEngine{
		clientFactory:  gosseract.NewClient,
		languages:      []string{DefaultLanguage},
		tessdataPrefix: os.Getenv(TessdataEnv),
		variables:      map[string]string{"preserve_interword_spaces": "1"},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "tesseract".
func (e *TesseractEngine) Name() string { return "tesseract" }

// Extract runs OCR over the image at path and returns the trimmed text.
func (e *TesseractEngine) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", &Error{Path: path, Err: err}
	}

	c := e.clientFactory()
	defer c.Close()

	if e.tessdataPrefix != "" {
		c.TessdataPrefix = e.tessdataPrefix
	}
	if err := c.SetLanguage(e.languages...); err != nil {
		return "", &Error{Path: path, Err: fmt.Errorf("set languages: %w", err)}
	}
	for k, v := range e.variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return "", &Error{Path: path, Err: fmt.Errorf("set variable %s: %w", k, err)}
		}
	}
	if err := c.SetImage(path); err != nil {
		return "", &Error{Path: path, Err: fmt.Errorf("set image: %w", err)}
	}

	text, err := c.Text()
	if err != nil {
		return "", &Error{Path: path, Err: fmt.Errorf("recognize text: %w", err)}
	}
	return strings.TrimSpace(text), nil
}

// TextFileEngine returns the content of text files extracted earlier.
type TextFileEngine struct{}

// NewTextFileEngine returns a TextFileEngine.
func NewTextFileEngine() *TextFileEngine {
	return &TextFileEngine{}
}

// Name returns "text".
func (TextFileEngine) Name() string { return "text" }

// Extract reads the file at path.
func (TextFileEngine) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return "", &Error{Path: path, Err: err}
	}
	return strings.TrimSpace(string(data)), nil
}
