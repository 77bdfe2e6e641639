package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"ocrapi/internal/config"
	"ocrapi/internal/ocr"
	"ocrapi/internal/pipeline"
	"ocrapi/internal/preprocess"
)

// newPipeline builds the recognizer once and wires it into a pipeline.
// The caller owns the recognizer and must close it.
func newPipeline(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pipeline.Pipeline, ocr.Recognizer, error) {
	if cfg.OCRGPU {
		log.Warn().
			Str("engine", cfg.OCREngine).
			Msg("OCR_GPU is set but the engine has no GPU toggle; running on the default device")
	}

	recognizer, err := ocr.New(ctx, ocr.Config{
		Engine:  cfg.OCREngine,
		Workers: cfg.OCRWorkers,
		DocumentAI: ocr.DocumentAIConfig{
			ProjectID:   cfg.DocumentAIProject,
			Location:    cfg.DocumentAILocation,
			ProcessorID: cfg.DocumentAIProcessor,
		},
	})
	if err != nil {
		if errors.Is(err, ocr.ErrMissingCredentials) {
			log.Error().Err(err).Msg("Google Cloud credentials validation failed")
			return nil, nil, fmt.Errorf("Google Cloud credentials validation failed. Set one of:\n\n" +
				"1. GOOGLE_APPLICATION_CREDENTIALS with the path to a service account JSON file\n" +
				"2. GOOGLE_CREDENTIALS with the inline JSON\n" +
				"3. Application Default Credentials (gcloud auth application-default login)\n\n" +
				"Original error: %w", err)
		}
		log.Error().Err(err).Str("engine", cfg.OCREngine).Msg("Failed to create OCR engine")
		return nil, nil, fmt.Errorf("failed to create OCR engine: %w", err)
	}

	log.Info().
		Str("engine", recognizer.Name()).
		Int("workers", cfg.OCRWorkers).
		Bool("reading_order", cfg.OCRReadingOrder).
		Msg("OCR engine ready")

	p := pipeline.New(
		preprocess.New(preprocess.DefaultParams()),
		recognizer,
		pipeline.Options{ReadingOrder: cfg.OCRReadingOrder},
	)
	return p, recognizer, nil
}
