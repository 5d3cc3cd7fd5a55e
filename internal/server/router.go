package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/craftmind/contextd/internal/api"
	"github.com/craftmind/contextd/internal/api/handlers"
	"github.com/craftmind/contextd/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator   middleware.AuthValidator
	IndexHandler    *handlers.IndexHandler
	RetrieveHandler *handlers.RetrieveHandler
	AnalyzeHandler  *handlers.AnalyzeHandler
	JobsHandler     *handlers.JobsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(cfg.AuthValidator))

		r.Post("/index", cfg.IndexHandler.Index)
		r.Delete("/index/{projectID}/{contentID}", cfg.IndexHandler.Delete)

		r.Post("/retrieve", cfg.RetrieveHandler.Retrieve)
		r.Post("/analyze", cfg.AnalyzeHandler.Analyze)

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", cfg.JobsHandler.List)
			r.Get("/{jobID}", cfg.JobsHandler.Get)
		})
	})

	return r
}
