// Package ocr provides text recognition over preprocessed bitmaps.
//
// Three engines are available:
//   - tesseract: local Tesseract via gosseract (default). A fixed pool of
//     clients is created once at startup; each client serves one call at a time.
//     Builds tagged notesseract leave it out and need no cgo Tesseract headers.
//   - vision: Google Cloud Vision TEXT_DETECTION. Requires either
//     GOOGLE_APPLICATION_CREDENTIALS (path to a service account JSON file) or
//     GOOGLE_CREDENTIALS (inline JSON), falling back to application default credentials.
//   - documentai: a Google Document AI OCR processor. Uses the same credentials
//     plus a project, location and processor ID.
//
// Detections are returned in the engine's own order, which is not guaranteed
// to be reading order. SortReadingOrder reorders them on request.
package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"
)

// Recognizer detects and transcribes text regions in an image.
// Implementations are safe for concurrent use.
type Recognizer interface {
	// Name identifies the engine (e.g., "tesseract").
	Name() string

	// Recognize runs detection and transcription once over img.
	Recognize(ctx context.Context, img *image.Gray) (*Result, error)

	// Close releases engine resources. The recognizer must not be used afterwards.
	Close() error
}

// Detection is one recognized text region.
type Detection struct {
	// Region is the bounding box in pixel coordinates.
	Region image.Rectangle `json:"region"`

	// Text is the transcribed string.
	Text string `json:"text"`

	// Confidence is the engine's score between 0.0 and 1.0, zero when not reported.
	Confidence float64 `json:"confidence"`
}

// Result holds the detections of a single call.
type Result struct {
	Detections []Detection
	Engine     string
	Duration   time.Duration
}

// Texts returns the transcribed strings in detection order.
func (r *Result) Texts() []string {
	return Texts(r.Detections)
}

// Texts returns the text of each detection, keeping order.
func Texts(detections []Detection) []string {
	texts := make([]string, 0, len(detections))
	for _, d := range detections {
		texts = append(texts, d.Text)
	}
	return texts
}

// Config selects and tunes an engine.
type Config struct {
	// Engine is "tesseract", "vision" or "documentai".
	Engine string

	// Workers is the number of Tesseract clients kept in the pool.
	Workers int

	// DocumentAI locates the processor for the documentai engine.
	DocumentAI DocumentAIConfig
}

// New constructs the configured engine. It is expensive and meant to run once per process.
func New(ctx context.Context, cfg Config) (Recognizer, error) {
	var (
		rec Recognizer
		err error
	)
	switch strings.ToLower(cfg.Engine) {
	case "", "tesseract":
		rec, err = NewTesseractRecognizer(TesseractConfig{Workers: cfg.Workers})
	case "vision":
		rec, err = NewVisionRecognizer(ctx)
	case "documentai":
		rec, err = NewDocumentAIRecognizer(ctx, cfg.DocumentAI)
	default:
		return nil, NewOCRError("New", ErrUnknownEngine, fmt.Sprintf("engine %q", cfg.Engine))
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
