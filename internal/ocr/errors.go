package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrNoImages is returned when a folder holds no supported image.
	ErrNoImages = errors.New("no supported images found")

	// ErrNotDirectory is returned when the image path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)

// Error reports a failed extraction for one input file.
type Error struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
