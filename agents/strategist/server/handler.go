package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"video-strategist/agents/strategist"
	"video-strategist/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var body models.StrategyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	body.Prompt = strings.TrimSpace(body.Prompt)
	body.ContentType = strings.ToLower(strings.TrimSpace(body.ContentType))

	if err := h.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err), err.Error())
		return
	}

	req, err := strategist.NewRequest(body.Prompt, body.ContentType, body.RegionCode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	start := time.Now()
	doc, err := h.runner.Run(ctx, req)
	if err != nil {
		h.monitor.RecordCriticalFailure(fmt.Errorf("request %q: %w", req.Prompt, err), time.Since(start))
		status, message := mapRunError(err)
		writeError(w, status, message, err.Error())
		return
	}

	h.monitor.RecordSuccess(fmt.Sprintf("report for %q", req.Prompt), time.Since(start))
	writeJSON(w, http.StatusOK, models.SuccessResponse{Status: models.StatusSuccess, Data: *doc})
}

func mapRunError(err error) (int, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "strategy generation timed out"
	case errors.Is(err, context.Canceled):
		return 499, "request canceled"
	case errors.Is(err, strategist.ErrSynthesis):
		return http.StatusBadGateway, "failed to produce a strategy report"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	switch fe := verrs[0]; fe.Field() {
	case "Prompt":
		return "prompt is required"
	case "ContentType":
		return fmt.Sprintf("invalid content_type %q (expected shorts, videos or both)", fe.Value())
	default:
		return "invalid " + strings.ToLower(fe.Field())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, models.ErrorResponse{Status: models.StatusError, Message: message, Details: details})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
