// internal/api/handlers.go
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"network-insights-go/internal/filter"
	"network-insights-go/internal/logger"
	"network-insights-go/internal/processor"
	"network-insights-go/internal/types"
)

type Handlers struct {
	Svc *processor.Service
	Log *logger.Logger
}

type errorBody struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing_columns,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var bad *BadRequestError
	var mc *types.MissingColumnError
	var le *processor.LoadError
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest
	case errors.As(err, &mc):
		return http.StatusUnprocessableEntity
	case errors.As(err, &le):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var mc *types.MissingColumnError
	if errors.As(err, &mc) {
		body.Missing = mc.Missing
	}
	if status >= 500 {
		body.Error = http.StatusText(status)
		h.Log.WithRequest(r).WithField("status", status).WithField("error", err.Error()).Error("request failed")
	} else {
		h.Log.WithRequest(r).WithField("status", status).WithField("error", err.Error()).Warn("request rejected")
	}
	_ = writeJSON(w, status, body)
}

// view parses the common parameters, runs fn and writes its result.
func view[T any](h *Handlers, w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, c filter.Criteria, min *int) (T, error)) {
	q := r.URL.Query()
	c, err := parseCriteria(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	min, err := parseMin(q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := fn(r.Context(), c, min)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, res); err != nil {
		h.Log.WithRequest(r).WithField("error", err.Error()).Error("failed to write response")
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.Log.WithRequest(r).Debug("health check")
	fmt.Fprint(w, "ok")
}

func (h *Handlers) Summary(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, func(ctx context.Context, c filter.Criteria, _ *int) (processor.SummaryResult, error) {
		return h.Svc.Summary(ctx, c)
	})
}

func (h *Handlers) Capillarity(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, h.Svc.Capillarity)
}

func (h *Handlers) Providers(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, h.Svc.Providers)
}

func (h *Handlers) NPS(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, func(ctx context.Context, c filter.Criteria, _ *int) (processor.NPSResult, error) {
		return h.Svc.NPS(ctx, c)
	})
}

func (h *Handlers) Finance(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, h.Svc.Finance)
}

func (h *Handlers) Quality(w http.ResponseWriter, r *http.Request) {
	view(h, w, r, h.Svc.Quality)
}

// Reload drops the cached source data.
func (h *Handlers) Reload(w http.ResponseWriter, r *http.Request) {
	h.Svc.Reload()
	h.Log.WithRequest(r).Info("source cache cleared")
	w.WriteHeader(http.StatusNoContent)
}
