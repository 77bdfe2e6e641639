// Package pipeline wires preprocessing, recognition and text cleanup into a
// single call per image.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"ocrapi/internal/logger"
	"ocrapi/internal/ocr"
	"ocrapi/internal/preprocess"
	"ocrapi/internal/textclean"
)

// Extraction is the outcome of one pipeline run.
type Extraction struct {
	Text        string
	Detections  []ocr.Detection
	Fingerprint string
	Engine      string
	Duration    time.Duration
}

// Options tune a Pipeline.
type Options struct {
	// ReadingOrder reorders detections top-to-bottom, left-to-right before joining.
	ReadingOrder bool
}

// Pipeline runs preprocess -> recognize -> normalize. It holds no per-request state.
type Pipeline struct {
	preprocessor *preprocess.Preprocessor
	recognizer   ocr.Recognizer
	opts         Options
}

func New(preprocessor *preprocess.Preprocessor, recognizer ocr.Recognizer, opts Options) *Pipeline {
	return &Pipeline{
		preprocessor: preprocessor,
		recognizer:   recognizer,
		opts:         opts,
	}
}

// Recognizer returns the engine the pipeline calls.
func (p *Pipeline) Recognizer() ocr.Recognizer {
	return p.recognizer
}

// Extract reads the image at path and returns its cleaned text.
// Decode failures match preprocess.ErrImageNotFound, engine faults match ocr.ErrRecognitionFailed.
func (p *Pipeline) Extract(ctx context.Context, path string) (*Extraction, error) {
	log := logger.WithContext(ctx)
	startTime := time.Now()

	bitmap, err := p.preprocessor.Load(path)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	fingerprint, err := preprocess.Fingerprint(bitmap)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fingerprint image")
	}

	result, err := p.recognizer.Recognize(ctx, bitmap)
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	detections := result.Detections
	if p.opts.ReadingOrder {
		detections = ocr.SortReadingOrder(detections)
	}

	text := textclean.Clean(textclean.Join(ocr.Texts(detections)))

	extraction := &Extraction{
		Text:        text,
		Detections:  detections,
		Fingerprint: fingerprint,
		Engine:      result.Engine,
		Duration:    time.Since(startTime),
	}

	log.Debug().
		Str("engine", extraction.Engine).
		Str("fingerprint", fingerprint).
		Int("detections", len(detections)).
		Dur("recognize_duration", result.Duration).
		Dur("duration", extraction.Duration).
		Int("text_length", len(text)).
		Msg("Pipeline completed")

	return extraction, nil
}
