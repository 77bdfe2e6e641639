//go:build notesseract

package ocr

import (
	"context"
	"image"
)

// TesseractLanguage is the trained data every pooled client loads.
const TesseractLanguage = "eng"

// TesseractConfig holds the settings applied to every pooled client.
type TesseractConfig struct {
	Workers int
}

// TesseractRecognizer is a stub for builds without Tesseract support.
type TesseractRecognizer struct{}

// NewTesseractRecognizer reports that the engine was not compiled in.
func NewTesseractRecognizer(cfg TesseractConfig) (*TesseractRecognizer, error) {
	return nil, NewOCRError("NewTesseractRecognizer", ErrUnknownEngine, "built with notesseract; rebuild without the tag to enable tesseract")
}

func (r *TesseractRecognizer) Name() string { return "tesseract" }

func (r *TesseractRecognizer) Version() string { return "" }

func (r *TesseractRecognizer) Recognize(ctx context.Context, img *image.Gray) (*Result, error) {
	return nil, NewOCRError("Recognize", ErrEngineClosed, "tesseract not compiled in")
}

func (r *TesseractRecognizer) Close() error { return nil }
