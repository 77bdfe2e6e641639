package ocr

import (
	"errors"
	"fmt"
)

// Common recognition errors
var (
	// ErrRecognitionFailed is returned when the OCR engine fails to process an image.
	// Requests are never retried; the failure is terminal for the call.
	ErrRecognitionFailed = errors.New("text recognition failed")

	// ErrMissingCredentials is returned when the vision or documentai engine is selected
	// but neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is usable.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrEngineClosed is returned when a recognizer is used after Close.
	ErrEngineClosed = errors.New("recognition engine is closed")

	// ErrUnknownEngine is returned by New for an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown recognition engine")

	// ErrInvalidConfiguration is returned when an engine is missing required settings.
	ErrInvalidConfiguration = errors.New("invalid engine configuration")
)

// OCRError wraps errors with additional context about the recognition failure.
type OCRError struct {
	// Op is the operation that failed (e.g., "Recognize", "NewTesseractRecognizer").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *OCRError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("ocr: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("ocr: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *OCRError) Unwrap() error {
	return e.Err
}

// NewOCRError creates a new OCRError with the specified operation and underlying error.
func NewOCRError(op string, err error, details string) *OCRError {
	return &OCRError{
		Op:      op,
		Err:     err,
		Details: details,
	}
}

// WrapOCRError wraps an error as an OCRError if it isn't already one.
func WrapOCRError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var ocrErr *OCRError
	if errors.As(err, &ocrErr) {
		return err
	}

	return NewOCRError(op, err, details)
}
