package ledger

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
	"github.com/bodega-pos/bodega/internal/shared"
)

// Handler wires HTTP endpoints for the cash ledger.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/movements", h.handleList)
	r.Post("/movements", h.handleRecord)
}

type recordRequest struct {
	Direction  string  `json:"direction" validate:"required,oneof=in out"`
	Category   string  `json:"category" validate:"required,max=60"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Note       string  `json:"note" validate:"max=240"`
	OccurredAt string  `json:"occurred_at"`
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid movement payload")
		return
	}
	var occurredAt time.Time
	if req.OccurredAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "occurred_at must be RFC3339")
			return
		}
		occurredAt = parsed
	}

	m, err := h.service.Record(r.Context(), MovementInput{
		Direction:  Direction(req.Direction),
		Category:   req.Category,
		Amount:     req.Amount,
		Note:       req.Note,
		OccurredAt: occurredAt,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Direction: Direction(q.Get("direction")),
		Category:  q.Get("category"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		filter.Limit = limit
	}

	if p := q.Get("period"); p != "" {
		period, err := shared.ParsePeriod(p)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown period")
			return
		}
		from, to, err := period.Window(time.Now())
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		filter.From, filter.To = &from, &to
	} else {
		if raw := q.Get("from"); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "from must be YYYY-MM-DD")
				return
			}
			filter.From = &t
		}
		if raw := q.Get("to"); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Bad Request", "to must be YYYY-MM-DD")
				return
			}
			filter.To = &t
		}
	}

	movements, err := h.service.Query(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, movements)
}
