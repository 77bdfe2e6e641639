package server

import (
	"net/http"

	"ocrapi/internal/ocr"
)

// LivenessMessage is returned by the root endpoint.
const LivenessMessage = "AI Handwriting OCR API Running..."

type HealthHandler struct {
	recognizer ocr.Recognizer
}

func NewHealthHandler(recognizer ocr.Recognizer) *HealthHandler {
	return &HealthHandler{recognizer: recognizer}
}

// Root reports liveness independently of the pipeline.
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": LivenessMessage})
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.recognizer == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "engine": ""})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "engine": h.recognizer.Name()})
}
