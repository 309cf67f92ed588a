package httpadapter

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"stemsplit/internal/config"
	"stemsplit/internal/core/services"
)

// Server exposes the separation pipeline over HTTP.
type Server struct {
	logger   *slog.Logger
	cfg      config.Config
	pipeline *services.Pipeline
}

func New(logger *slog.Logger, cfg config.Config, pipeline *services.Pipeline) *Server {
	return &Server{logger: logger, cfg: cfg, pipeline: pipeline}
}

// Routes returns the chi router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/health", s.handleHealth)
	r.Post("/separate-vocals", s.handleSeparateVocals)
	r.Post("/analyze-vocals", s.handleAnalyzeVocals)
	return r
}
