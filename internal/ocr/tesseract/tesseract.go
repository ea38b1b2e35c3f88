// Package tesseract implements ocr.Engine with the Tesseract library through
// gosseract.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-default data directory can be set with ocr.Options.TessdataPrefix.
package tesseract

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/legend-linker/internal/ocr"
)

// Engine runs Tesseract on single-channel images. A gosseract client is not
// safe for concurrent use, so calls are serialized.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// New creates an engine for opts.Language. Close must be called to release
// the native client.
func New(opts ocr.Options) (*Engine, error) {
	client := gosseract.NewClient()

	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	language := opts.Language
	if language == "" {
		language = ocr.DefaultLanguage
	}
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	return &Engine{client: client}, nil
}

// Recognize returns the words Tesseract finds in img using the given page
// segmentation mode. Confidence is on Tesseract's 0-100 scale.
func (e *Engine) Recognize(img *image.Gray, mode ocr.PageSegMode) ([]ocr.Word, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	words := make([]ocr.Word, 0, len(boxes))
	for _, box := range boxes {
		words = append(words, ocr.Word{
			Text:       box.Word,
			Confidence: box.Confidence,
			Box:        box.Box,
		})
	}
	return words, nil
}

// Close releases the native client.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.client.Close()
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}

// Info describes the OCR subsystem.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language"`
	Error     string `json:"error,omitempty"`
	Backend   string `json:"backend"`
}

// Available reports whether an engine can be created with opts.
func Available(opts ocr.Options) Info {
	info := Info{Language: opts.Language, Backend: "gosseract"}
	e, err := New(opts)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer e.Close()

	info.Available = true
	info.Version = Version()
	return info
}
