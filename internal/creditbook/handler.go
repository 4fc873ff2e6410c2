package creditbook

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the fiado book.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the creditbook handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers creditbook routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/debtors", h.handleDebtors)
	r.Get("/outstanding", h.handleOutstanding)
	r.Post("/customers", h.handleCreateCustomer)
	r.Post("/debts/{saleID}/settle", h.handleSettle)
}

func (h *Handler) handleDebtors(w http.ResponseWriter, r *http.Request) {
	debtors, err := h.service.ListDebtors(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, debtors)
}

func (h *Handler) handleOutstanding(w http.ResponseWriter, r *http.Request) {
	total, err := h.service.OutstandingTotal(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]float64{"outstanding_total": total})
}

type createCustomerRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Phone string `json:"phone" validate:"max=40"`
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer payload")
		return
	}
	c, err := h.service.CreateCustomer(r.Context(), req.Name, req.Phone)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) handleSettle(w http.ResponseWriter, r *http.Request) {
	saleID, err := strconv.ParseInt(chi.URLParam(r, "saleID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	settlement, err := h.service.SettleDebt(r.Context(), saleID)
	if err != nil {
		h.logger.Warn("settle debt", slog.Int64("sale_id", saleID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settlement)
}
