// Package pipeline runs a batch through its processing steps.
//
// A batch moves through text extraction (OCR over screenshots, or saved
// text), recognition (lines to players) and validation (plausibility
// rules). Each stage is a Step operating on the shared *model.Batch; the
// Pipeline runs them in order, logs them and honours cancellation between
// steps.
//
// OCR over many screenshots is the only concurrent part. The Extractor
// bounds it with errgroup and returns results in submission order, and
// recognition starts only once every image has been processed.
package pipeline
