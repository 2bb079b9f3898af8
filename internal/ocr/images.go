package ocr

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// imageExtensions lists the file extensions treated as screenshots.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tiff": true,
	".tif":  true,
	".bmp":  true,
	".gif":  true,
}

// IsImage reports whether path has a supported image extension,
// ignoring case.
func IsImage(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// ListImages returns the supported images directly inside dir, sorted by
// file name so that runs are reproducible.
func ListImages(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read image folder: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !IsImage(entry.Name()) {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}

	slices.Sort(images)
	return images, nil
}
