package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dashboard-datagen/internal/errors"
	"dashboard-datagen/internal/observability"
	"dashboard-datagen/internal/services"
)

const cacheControl = "public, max-age=300"

type APIHandlers struct {
	dataset *services.DatasetService
	logger  *slog.Logger
}

func NewAPIHandlers(dataset *services.DatasetService, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dataset: dataset,
		logger:  logger,
	}
}

func (h *APIHandlers) HandleDashboardData(w http.ResponseWriter, r *http.Request) {
	ds := h.dataset.Dataset()
	if ds == nil {
		h.writeError(w, r, errors.ServiceUnavailable("dataset has not been generated yet"))
		return
	}

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, ds, headers)
}

func (h *APIHandlers) HandleSubset(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "limit must be an integer"))
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "offset must be an integer"))
		return
	}

	page, err := h.dataset.Subset(r.PathValue("subset"), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, page, headers)
}

func (h *APIHandlers) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	ds, err := h.dataset.Regenerate(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"generated_at": h.dataset.GeneratedAt(),
		"collections":  ds.Counts(),
	})
}

func (h *APIHandlers) HandleClassify(w http.ResponseWriter, r *http.Request) {
	brand := strings.TrimSpace(r.URL.Query().Get("brand"))
	if brand == "" {
		h.writeError(w, r, errors.BadRequest("brand query parameter is required"))
		return
	}

	errors.WriteSuccess(w, h.dataset.Classify(brand))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.dataset.Stats())
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

// queryInt reads an optional integer query parameter; absent means zero.
func queryInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
