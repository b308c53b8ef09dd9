package analytichttp

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/docket-th/docket/internal/analytics"
	"github.com/docket-th/docket/internal/platform/httpx"
)

// Handler exposes dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.Error("dashboard summary failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Data(w, http.StatusOK, summary)
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	months := 0
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Message(w, http.StatusBadRequest, "invalid months value")
			return
		}
		months = parsed
	}

	series, err := h.service.Revenue(r.Context(), months)
	if err != nil {
		h.logger.Error("dashboard revenue failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if series == nil {
		series = []analytics.MonthRevenue{}
	}
	httpx.Data(w, http.StatusOK, series)
}
