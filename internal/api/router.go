package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every route onto a chi mux.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", h.CreateEntry)
			r.Get("/", h.ListEntries)
			r.Post("/import", h.ImportEntries)
			r.Get("/{id}", h.GetEntry)
			r.Put("/{id}", h.UpdateEntry)
			r.Delete("/{id}", h.DeleteEntry)
		})

		r.Post("/analyze", h.Analyze)
		r.Get("/tags", h.Tags)

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/overview", h.Overview)
			r.Get("/timeline", h.Timeline)
			r.Get("/patterns", h.Patterns)
			r.Get("/mood", h.Mood)
			r.Get("/themes", h.Themes)
			r.Get("/entities", h.Entities)
			r.Get("/insights", h.PersonalInsights)
		})

		r.Route("/summaries", func(r chi.Router) {
			r.Post("/generate", h.GenerateSummary)
			r.Get("/", h.ListSummaries)
		})
	})

	r.Get("/health", h.Health)

	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.Debug("[API] Request served",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("elapsed", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
