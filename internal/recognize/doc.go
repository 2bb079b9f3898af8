// Package recognize runs the line-level parser over a whole block of OCR
// text and produces deduplicated, class-resolved, kill-sorted players plus
// the diagnostics for lines that could not be turned into players.
//
// A Recognizer keeps no state between calls to Recognize. Everything a call
// discovers is part of its returned Result, so one Recognizer can be reused
// for any number of texts.
package recognize
