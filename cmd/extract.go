package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ocrapi/internal/logger"
	"ocrapi/internal/ocr"
	"ocrapi/internal/pipeline"
	"ocrapi/internal/preprocess"
	"ocrapi/internal/upload"
)

var extractCmd = &cobra.Command{
	Use:   "extract [image-file]",
	Short: "Extract text from a local image",
	Long: `Run the OCR pipeline on a local image without starting the server.

The image goes through the same preprocessing, recognition and cleanup as
POST /extract-text. The engine is selected with OCR_ENGINE (tesseract, vision
or documentai).`,
	Example: `  # Print the extracted text
  ocrapi extract note.jpg

  # Save JSON with detections and timing
  ocrapi extract note.jpg --json -o result.json

  # Give a slow engine more time
  ocrapi extract scan.png --timeout 600`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractOutput represents the JSON output structure when --json flag is used
type ExtractOutput struct {
	Text               string          `json:"extracted_text"`
	FileName           string          `json:"file_name"`
	FileSize           int64           `json:"file_size"`
	Engine             string          `json:"engine"`
	Fingerprint        string          `json:"fingerprint,omitempty"`
	Detections         []ocr.Detection `json:"detections"`
	ProcessedAt        time.Time       `json:"processed_at"`
	ProcessingDuration string          `json:"processing_duration"`
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	extractCmd.Flags().Bool("json", false, "Output as JSON")
	extractCmd.Flags().Int("timeout", 300, "Processing timeout in seconds")
}

func runExtract(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("extract")

	outputPath, _ := cmd.Flags().GetString("output")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	imagePath := args[0]

	log.Info().
		Str("file", imagePath).
		Str("output", outputPath).
		Bool("json", jsonOutput).
		Int("timeout", timeoutSecs).
		Msg("Starting text extraction")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fileInfo, err := validateImageFile(imagePath, upload.ParseAllowSet(cfg.AllowedExtensions), log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	defer cancel()

	p, recognizer, err := newPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := recognizer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close OCR engine")
		}
	}()

	extraction, err := p.Extract(log.WithContext(ctx), imagePath)
	if err != nil {
		return handleExtractError(err, log)
	}

	log.Info().
		Str("engine", extraction.Engine).
		Int("detections", len(extraction.Detections)).
		Dur("duration", extraction.Duration).
		Int("text_length", len(extraction.Text)).
		Msg("Text extraction completed successfully")

	data, err := formatExtraction(extraction, fileInfo, jsonOutput)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON output")
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	return writeOutput(data, outputPath, os.Stdout, log)
}

// validateImageFile checks that the file exists, is a regular non-empty file and has an allowed extension
func validateImageFile(imagePath string, allowed upload.AllowSet, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("file", imagePath).Msg("Image file not found")
			return nil, fmt.Errorf("image file not found: %s", imagePath)
		}
		if os.IsPermission(err) {
			log.Error().Str("file", imagePath).Msg("Permission denied accessing image file")
			return nil, fmt.Errorf("permission denied accessing image file: %s", imagePath)
		}
		return nil, fmt.Errorf("error accessing image file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		log.Error().Str("file", imagePath).Msg("Path is not a regular file")
		return nil, fmt.Errorf("path is not a regular file: %s", imagePath)
	}

	if !allowed.Allowed(filepath.Base(imagePath)) {
		log.Error().
			Str("file", imagePath).
			Strs("allowed", allowed.List()).
			Msg("Unsupported file type")
		return nil, fmt.Errorf("unsupported file type: %s (allowed: %v)", imagePath, allowed.List())
	}

	if fileInfo.Size() == 0 {
		log.Error().Str("file", imagePath).Msg("Image file is empty")
		return nil, fmt.Errorf("image file is empty: %s", imagePath)
	}

	return fileInfo, nil
}

// handleExtractError provides user-friendly error messages for pipeline failures
func handleExtractError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Text extraction failed")

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("text extraction timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("text extraction was canceled")
	case errors.Is(err, preprocess.ErrImageNotFound):
		return fmt.Errorf("invalid or corrupted image. Please check the file integrity: %w", err)
	case errors.Is(err, ocr.ErrRecognitionFailed):
		return fmt.Errorf("text recognition failed. Check that the engine is installed or reachable: %w", err)
	default:
		return fmt.Errorf("text extraction failed: %w", err)
	}
}

func formatExtraction(extraction *pipeline.Extraction, fileInfo os.FileInfo, jsonOutput bool) ([]byte, error) {
	if !jsonOutput {
		return []byte(extraction.Text + "\n"), nil
	}

	detections := extraction.Detections
	if detections == nil {
		detections = []ocr.Detection{}
	}

	output := ExtractOutput{
		Text:               extraction.Text,
		FileName:           filepath.Base(fileInfo.Name()),
		FileSize:           fileInfo.Size(),
		Engine:             extraction.Engine,
		Fingerprint:        extraction.Fingerprint,
		Detections:         detections,
		ProcessedAt:        time.Now(),
		ProcessingDuration: extraction.Duration.String(),
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeOutput(data []byte, outputPath string, stdout io.Writer, log zerolog.Logger) error {
	if outputPath == "" {
		if _, err := stdout.Write(data); err != nil {
			log.Error().Err(err).Msg("Failed to write to stdout")
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		log.Error().
			Err(err).
			Str("output_file", outputPath).
			Msg("Failed to write output file")
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Info().
		Str("output_file", outputPath).
		Int("bytes", len(data)).
		Msg("Extraction results written to file")
	return nil
}
