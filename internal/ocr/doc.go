// Package ocr extracts raw text from leaderboard screenshots.
//
// The Engine interface hides the OCR backend. TesseractEngine drives a local
// tesseract installation through gosseract; TextFileEngine reads text that
// was extracted earlier, so a batch can be re-run without OCR.
//
// The package also lists the screenshots of a folder and reads their EXIF
// capture time, which serves as the batch date when none is given.
package ocr
