package checkout

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bodega-pos/bodega/internal/catalog"
	"github.com/bodega-pos/bodega/internal/platform/httpx"
	"github.com/bodega-pos/bodega/internal/shared"
)

const cartSessionKey = "checkout_cart"

// Handler wires HTTP endpoints for ringing sales. The cart lives in the
// operator's session, so a page reload keeps the lines.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	catalog  *catalog.Service
	validate *validator.Validate
}

// NewHandler constructs the checkout handler.
func NewHandler(logger *slog.Logger, service *Service, catalogSvc *catalog.Service) *Handler {
	return &Handler{logger: logger, service: service, catalog: catalogSvc, validate: validator.New()}
}

// MountRoutes registers checkout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cart", h.handleCart)
	r.Delete("/cart", h.handleClearCart)
	r.Post("/cart/items", h.handleAddItem)
	r.Patch("/cart/items/{productID}", h.handleUpdateItem)
	r.Delete("/cart/items/{productID}", h.handleRemoveItem)
	r.Post("/commit", h.handleCommit)
	r.Get("/sales/recent", h.handleRecentSales)
	r.Get("/sales/{id}", h.handleGetSale)
}

func (h *Handler) loadCart(r *http.Request) *Cart {
	cart := &Cart{}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return cart
	}
	raw := sess.Get(cartSessionKey)
	if raw == "" {
		return cart
	}
	if err := json.Unmarshal([]byte(raw), cart); err != nil {
		h.logger.Warn("corrupt cart in session, starting over", slog.Any("error", err))
		return &Cart{}
	}
	return cart
}

func (h *Handler) saveCart(r *http.Request, cart *Cart) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return
	}
	if cart.Empty() {
		sess.Delete(cartSessionKey)
		return
	}
	raw, err := json.Marshal(cart)
	if err != nil {
		h.logger.Error("encode cart", slog.Any("error", err))
		return
	}
	sess.Set(cartSessionKey, string(raw))
}

type cartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

func (h *Handler) respondCart(w http.ResponseWriter, cart *Cart) {
	view := cartView{Lines: cart.Lines, Total: cart.Total()}
	if view.Lines == nil {
		view.Lines = []CartLine{}
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	h.respondCart(w, h.loadCart(r))
}

func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	cart := h.loadCart(r)
	cart.Clear()
	h.saveCart(r, cart)
	h.respondCart(w, cart)
}

type addItemRequest struct {
	ProductID int64  `json:"product_id"`
	Barcode   string `json:"barcode"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if req.ProductID == 0 && req.Barcode == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "product_id or barcode required")
		return
	}

	var (
		p   catalog.Product
		err error
	)
	if req.ProductID != 0 {
		p, err = h.catalog.Get(r.Context(), req.ProductID)
	} else {
		p, err = h.catalog.GetByBarcode(r.Context(), req.Barcode)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !p.IsActive {
		httpx.RespondError(w, ErrProductUnavailable)
		return
	}

	cart := h.loadCart(r)
	if err := cart.Add(p); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.saveCart(r, cart)
	h.respondCart(w, cart)
}

type updateItemRequest struct {
	Qty   *float64 `json:"qty"`
	Delta *int     `json:"delta"`
}

func (h *Handler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req updateItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}

	cart := h.loadCart(r)
	switch {
	case req.Qty != nil:
		err = cart.SetQuantity(productID, *req.Qty)
	case req.Delta != nil:
		err = cart.Adjust(productID, *req.Delta)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "qty or delta required")
		return
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.saveCart(r, cart)
	h.respondCart(w, cart)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	cart := h.loadCart(r)
	cart.Remove(productID)
	h.saveCart(r, cart)
	h.respondCart(w, cart)
}

type commitRequest struct {
	PaymentMethod  string `json:"payment_method" validate:"required,oneof=CASH CARD TRANSFER CREDIT"`
	CustomerID     int64  `json:"customer_id"`
	CustomerName   string `json:"customer_name" validate:"max=120"`
	CustomerPhone  string `json:"customer_phone" validate:"max=40"`
	CollateralNote string `json:"collateral_note" validate:"max=240"`
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid commit payload")
		return
	}

	key := r.Header.Get("X-Idempotency-Key")
	if key == "" {
		key = uuid.NewString()
	}

	cart := h.loadCart(r)
	sale, err := h.service.Commit(r.Context(), CommitInput{
		Cart:           cart,
		PaymentMethod:  PaymentMethod(req.PaymentMethod),
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CollateralNote: req.CollateralNote,
		IdempotencyKey: key,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	cart.Clear()
	h.saveCart(r, cart)
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleRecentSales(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sales, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) handleGetSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
