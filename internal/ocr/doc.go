// Package ocr turns image regions into text fragments and labels.
//
// The Recognizer owns the policy: binarize the region, ask an Engine for
// words in sparse-text mode, drop blank and low-confidence words, normalize
// to NFC, and order what remains in reading order. Engines only report raw
// words; the Tesseract implementation lives in the tesseract subpackage so
// that this package builds without cgo.
//
// Recognition misses are not errors: an unreadable region yields no
// fragments and RecognizeLabel returns nil.
package ocr
