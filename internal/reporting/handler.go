package reporting

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/platform/httpx"
	"github.com/warungpos/warungpos/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", h.Dashboard)
		r.Get("/revenue-series", h.RevenueSeries)
	})
}

type dashboardResponse struct {
	DashboardSummary
	RevenueDisplay string `json:"revenue_display"`
	ProfitDisplay  string `json:"profit_display"`
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboardResponse{
		DashboardSummary: summary,
		RevenueDisplay:   shared.FormatRupiah(summary.Revenue),
		ProfitDisplay:    shared.FormatRupiah(summary.Profit),
	})
}

func (h *Handler) RevenueSeries(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	points, err := h.service.RevenueSeries(r.Context(), days)
	if err != nil {
		h.logger.Error("load revenue series", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"points": points})
}
