package checkout

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/platform/httpx"
	"github.com/warungpos/warungpos/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/checkout", h.Submit)
}

type submitLine struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Name      string `json:"name"`
	SalePrice int64  `json:"sale_price" validate:"gte=0"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

type submitRequest struct {
	Lines        []submitLine `json:"lines" validate:"required,min=1,dive"`
	CashTendered int64        `json:"cash_tendered" validate:"gte=0"`
}

type receiptResponse struct {
	Receipt
	TotalDisplay  string `json:"total_display"`
	CashDisplay   string `json:"cash_display"`
	ChangeDisplay string `json:"change_display"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	actorID, err := shared.ActorFromRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "missing or malformed "+shared.ActorHeader+" header")
		return
	}

	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	lines := make([]CartLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, CartLine{
			ProductID: line.ProductID,
			Name:      line.Name,
			SalePrice: line.SalePrice,
			Quantity:  line.Quantity,
		})
	}

	receipt, err := h.service.Submit(r.Context(), SubmitInput{
		Lines:        lines,
		CashTendered: req.CashTendered,
		ActorID:      actorID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, receiptResponse{
		Receipt:       receipt,
		TotalDisplay:  shared.FormatRupiah(receipt.TotalAmount),
		CashDisplay:   shared.FormatRupiah(receipt.CashTendered),
		ChangeDisplay: shared.FormatRupiah(receipt.ChangeDue),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInsufficientPayment):
		httpx.Problem(w, http.StatusBadRequest, "Insufficient Payment", err.Error())
	case errors.As(err, &stockErr):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", stockErr.Error())
	case errors.Is(err, ErrConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", "checkout contention, please try again")
	case errors.Is(err, catalog.ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("submit checkout", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Store Unavailable", "checkout not committed, cart preserved")
	}
}
