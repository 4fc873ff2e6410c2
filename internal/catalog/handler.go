package catalog

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
	"github.com/bodega-pos/bodega/internal/shared"
)

// Handler wires HTTP endpoints for the catalog module.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the catalog handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes. Reads are open to any logged-in
// operator; writes additionally require the catalog capability, which the
// service re-checks.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Get("/products/{id}", h.handleGet)
	r.Get("/products/barcode/{code}", h.handleGetByBarcode)
	r.Get("/products/low-stock", h.handleLowStock)
	r.Get("/products/expiry-report", h.handleExpiryReport)
	r.Post("/products", h.handleSave)
	r.Delete("/products/{id}", h.handleSoftDelete)
	r.Post("/products/{id}/restock", h.handleRestock)
}

type productView struct {
	Product
	ExpiryStatus ExpiryStatus `json:"expiry_status"`
	LowStock     bool         `json:"low_stock"`
}

func viewOf(p Product, now time.Time) productView {
	return productView{Product: p, ExpiryStatus: ClassifyExpiry(p.ExpiresOn, now), LowStock: p.LowOnStock()}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListActive(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	now := time.Now()
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, viewOf(p, now))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(p, time.Now()))
}

func (h *Handler) handleGetByBarcode(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByBarcode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, viewOf(p, time.Now()))
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.logger.Error("list low stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) handleExpiryReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ExpiryReport(r.Context())
	if err != nil {
		h.logger.Error("expiry report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	p, err := h.service.Save(r.Context(), input)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusOK
	if input.ID == 0 {
		status = http.StatusCreated
	}
	httpx.JSON(w, status, viewOf(p, time.Now()))
}

func (h *Handler) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	if err := h.service.SoftDelete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type restockRequest struct {
	Qty float64 `json:"qty"`
}

func (h *Handler) handleRestock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req restockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	p, err := h.service.Restock(r.Context(), id, req.Qty)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if op, ok := shared.OperatorFromContext(r.Context()); ok {
		h.logger.Info("product restocked",
			slog.Int64("product_id", id),
			slog.Float64("qty", req.Qty),
			slog.Int64("operator_id", op.ID))
	}
	httpx.JSON(w, http.StatusOK, viewOf(p, time.Now()))
}
