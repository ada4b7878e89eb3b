package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/forgeline/forgeline/internal/authz"
	"github.com/forgeline/forgeline/internal/claims"
	"github.com/forgeline/forgeline/internal/platform/httpx"
)

// Module is the claims module name guarding these routes.
const Module = "parts"

// Handler wires part endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers part routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{View: []string{Module}}))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Create: []string{Module}}))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		// Stock adjustments touch both the part and its quantity, so they
		// need update on parts.
		r.Use(h.guard.Require(claims.Requirement{Update: []string{Module}}))
		r.Post("/{id}/adjust", h.adjust)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Delete: []string{Module}}))
		r.Delete("/{id}", h.delete)
	})
}

type partPayload struct {
	SKU          string `json:"sku" validate:"required,max=64"`
	Name         string `json:"name" validate:"required,max=200"`
	UOM          string `json:"uom" validate:"omitempty,max=16"`
	QtyOnHand    int64  `json:"qty_on_hand" validate:"gte=0"`
	ReorderPoint int64  `json:"reorder_point" validate:"gte=0"`
}

type adjustPayload struct {
	Delta  int64  `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"max=200"`
}

type partView struct {
	ID           int64  `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	UOM          string `json:"uom"`
	QtyOnHand    int64  `json:"qty_on_hand"`
	ReorderPoint int64  `json:"reorder_point"`
	BelowReorder bool   `json:"below_reorder"`
}

func toView(p Part) partView {
	return partView{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		UOM:          p.UOM,
		QtyOnHand:    p.QtyOnHand,
		ReorderPoint: p.ReorderPoint,
		BelowReorder: p.QtyOnHand < p.ReorderPoint,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	list, err := h.service.List(r.Context(), auth.CompanyID)
	if err != nil {
		h.logger.Error("list parts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]partView, len(list))
	for i, p := range list {
		out[i] = toView(p)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), auth.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*p))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	var payload partPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed part payload")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.Create(r.Context(), Part{
		CompanyID:    auth.CompanyID,
		SKU:          payload.SKU,
		Name:         payload.Name,
		UOM:          payload.UOM,
		QtyOnHand:    payload.QtyOnHand,
		ReorderPoint: payload.ReorderPoint,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(*p))
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var payload adjustPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed adjustment payload")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.AdjustStock(r.Context(), auth.CompanyID, id, payload.Delta)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.logger.Info("stock adjusted",
		slog.Int64("part_id", id),
		slog.Int64("delta", payload.Delta),
		slog.String("reason", payload.Reason),
		slog.Int64("company_id", auth.CompanyID),
	)
	httpx.JSON(w, http.StatusOK, toView(*p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), auth.CompanyID, id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "part not found")
	case errors.Is(err, ErrStockBelowZero):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}
