package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"ocrapi/internal/ocr"
	"ocrapi/internal/preprocess"
	"ocrapi/internal/upload"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// errorResponse maps pipeline and validation errors to a status and client-facing message.
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, upload.ErrMissingFile):
		return http.StatusBadRequest, "No file part in request"
	case errors.Is(err, upload.ErrEmptyFilename):
		return http.StatusBadRequest, "No selected file"
	case errors.Is(err, upload.ErrUnsupportedType):
		return http.StatusBadRequest, "Unsupported file type"
	case errors.Is(err, preprocess.ErrImageNotFound):
		return http.StatusBadRequest, "Invalid or corrupted image"
	case errors.Is(err, ocr.ErrRecognitionFailed), errors.Is(err, ocr.ErrEngineClosed):
		return http.StatusInternalServerError, "Text recognition failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
