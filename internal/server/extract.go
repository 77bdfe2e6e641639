package server

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"ocrapi/internal/pipeline"
	"ocrapi/internal/upload"
)

const (
	formField = "file"

	// maxMemory bounds how much of a multipart body is buffered in memory; the rest spills to disk.
	maxMemory = 32 << 20
)

type ExtractHandler struct {
	pipeline *pipeline.Pipeline
	store    *upload.Store
	allowed  upload.AllowSet
}

func NewExtractHandler(p *pipeline.Pipeline, store *upload.Store, allowed upload.AllowSet) *ExtractHandler {
	return &ExtractHandler{pipeline: p, store: store, allowed: allowed}
}

// ExtractText accepts a multipart "file" upload and responds with its recognized text.
func (h *ExtractHandler) ExtractText(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	file, header, err := formFile(r)
	if err != nil {
		h.fail(w, log, err)
		return
	}
	defer file.Close()

	up, err := upload.NewUpload(header.Filename, header.Size, h.allowed)
	if err != nil {
		h.fail(w, log, err)
		return
	}

	tmp, err := h.store.Save(file, up.Extension)
	if err != nil {
		log.Error().Err(err).Str("file", up.SanitizedName).Msg("Failed to store upload")
		writeError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}
	defer func() {
		if err := tmp.Remove(); err != nil {
			log.Warn().Err(err).Str("path", tmp.Path).Msg("Failed to remove temp file")
		}
	}()

	log.Info().
		Str("file", up.SanitizedName).
		Int64("size", tmp.Size).
		Msg("Processing upload")

	extraction, err := h.pipeline.Extract(r.Context(), tmp.Path)
	if err != nil {
		h.fail(w, log, err)
		return
	}

	log.Info().
		Str("file", up.SanitizedName).
		Str("engine", extraction.Engine).
		Str("fingerprint", extraction.Fingerprint).
		Int("detections", len(extraction.Detections)).
		Dur("duration", extraction.Duration).
		Msg("Text extracted")

	writeJSON(w, http.StatusOK, map[string]string{"extracted_text": extraction.Text})
}

func (h *ExtractHandler) fail(w http.ResponseWriter, log *zerolog.Logger, err error) {
	status, message := errorResponse(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Msg("Extraction rejected")
	writeError(w, status, message)
}

// formFile distinguishes a missing "file" part from one that names no file.
// Parts with an empty filename are parsed by mime/multipart as plain values.
func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil, upload.ErrMissingFile
		}
		return nil, nil, errors.Join(upload.ErrMissingFile, err)
	}

	if headers := r.MultipartForm.File[formField]; len(headers) > 0 {
		header := headers[0]
		if header.Filename == "" {
			return nil, nil, upload.ErrEmptyFilename
		}
		file, err := header.Open()
		if err != nil {
			return nil, nil, err
		}
		return file, header, nil
	}

	if _, ok := r.MultipartForm.Value[formField]; ok {
		return nil, nil, upload.ErrEmptyFilename
	}

	return nil, nil, upload.ErrMissingFile
}
