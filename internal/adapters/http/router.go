// Package http is the inbound ingestion API: the chi router and the server
// lifecycle around it.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/layerflow/internal/adapters/http/dto"
	"github.com/jsamuelsen11/layerflow/internal/adapters/http/handlers"
)

// NewRouter mounts the probes and the document endpoints behind
// middlewares, applied outermost first. Unknown routes and methods get
// problem-details bodies like every other error.
//
//	GET  /health/live
//	GET  /health/ready
//	POST /api/v1/documents
//	POST /api/v1/documents/batch
func NewRouter(
	documents *handlers.DocumentHandler,
	health *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteProblem(w, req, dto.NewProblem(req, http.StatusNotFound,
			"no route for "+req.Method+" "+req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		dto.WriteProblem(w, req, dto.NewProblem(req, http.StatusMethodNotAllowed,
			req.Method+" is not supported on "+req.URL.Path))
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", health.Liveness)
		r.Get("/ready", health.Readiness)
	})

	r.Route("/api/v1/documents", func(r chi.Router) {
		r.Post("/", documents.Ingest)
		r.Post("/batch", documents.IngestBatch)
	})

	return r
}
