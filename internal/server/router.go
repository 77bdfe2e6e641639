package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ocrapi/internal/pipeline"
	"ocrapi/internal/upload"
)

// Deps are the long-lived collaborators shared by all requests.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Store    *upload.Store
	Allowed  upload.AllowSet
}

// NewRouter builds the HTTP surface of the service.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS([]string{"*"}))

	health := NewHealthHandler(deps.Pipeline.Recognizer())
	r.Get("/", health.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	extract := NewExtractHandler(deps.Pipeline, deps.Store, deps.Allowed)
	r.Post("/extract-text", extract.ExtractText)

	return r
}
