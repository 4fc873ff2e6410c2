package till

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
	"github.com/bodega-pos/bodega/internal/shared"
)

// Handler wires the blind count endpoint.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the till handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers till routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/reconcile", h.handleReconcile)
}

type reconcileRequest struct {
	Period  string  `json:"period"`
	Counted float64 `json:"counted" validate:"gte=0"`
}

func (h *Handler) handleReconcile(w http.ResponseWriter, r *http.Request) {
	var req reconcileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "counted must be non-negative")
		return
	}
	period, err := shared.ParsePeriod(req.Period)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	rec, err := h.service.Reconcile(r.Context(), period, req.Counted)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}
