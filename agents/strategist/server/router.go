// Package server exposes the strategist pipeline over HTTP.
package server

import (
	"net/http"
	"time"

	"video-strategist/agents/strategist"
	"video-strategist/shared/monitoring"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	runner   strategist.Runner
	monitor  *monitoring.Monitor
	validate *validator.Validate
	timeout  time.Duration
}

func NewHandler(runner strategist.Runner, monitor *monitoring.Monitor, pipelineTimeout time.Duration) *Handler {
	return &Handler{
		runner:   runner,
		monitor:  monitor,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		timeout:  pipelineTimeout,
	}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(loggingMiddleware)
	r.Use(middleware.Recoverer)

	monitoring.Mount(r, handler.monitor)
	r.Post("/analyze-shorts", handler.analyze)
	return r
}
