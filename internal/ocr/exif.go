package ocr

import (
	"os"
	"time"

	exif "github.com/dsoprea/go-exif/v3"
)

// exifTimeLayout is the layout of EXIF date-time tags.
const exifTimeLayout = "2006:01:02 15:04:05"

// captureTags are the EXIF tags consulted for the capture time, most
// specific first.
var captureTags = []string{"DateTimeOriginal", "DateTimeDigitized", "DateTime"}

// CaptureTime returns the capture time recorded in the EXIF metadata of
// the image at path. It reports false when the image carries none.
func CaptureTime(path string) (time.Time, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // Image paths come from the user's folder
	if err != nil {
		return time.Time{}, false
	}
	return captureTimeFromBytes(data)
}

func captureTimeFromBytes(data []byte) (time.Time, bool) {
	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return time.Time{}, false
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return time.Time{}, false
	}

	values := make(map[string]string, len(captureTags))
	for _, entry := range entries {
		values[entry.TagName] = entry.Formatted
	}

	for _, tag := range captureTags {
		v, ok := values[tag]
		if !ok {
			continue
		}
		if t, err := time.ParseInLocation(exifTimeLayout, v, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EarliestCaptureTime returns the earliest EXIF capture time among paths.
func EarliestCaptureTime(paths []string) (time.Time, bool) {
	var (
		earliest time.Time
		found    bool
	)
	for _, p := range paths {
		t, ok := CaptureTime(p)
		if !ok {
			continue
		}
		if !found || t.Before(earliest) {
			earliest = t
			found = true
		}
	}
	return earliest, found
}
