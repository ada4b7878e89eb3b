package procurement

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/forgeline/forgeline/internal/authz"
	"github.com/forgeline/forgeline/internal/claims"
	"github.com/forgeline/forgeline/internal/inventory"
	"github.com/forgeline/forgeline/internal/platform/httpx"
)

// Module is the claims module name guarding these routes.
const Module = "purchasing"

// Handler wires purchase order endpoints.
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

// MountRoutes registers purchase order routes. Receiving posts stock, so it
// demands update on both purchasing and parts.
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
		r.Use(h.guard.Require(claims.Requirement{Update: []string{Module}}))
		r.Post("/{id}/submit", h.submit)
		r.Post("/{id}/cancel", h.cancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Update: []string{Module, inventory.Module}}))
		r.Post("/{id}/receive", h.receive)
	})
}

type orderPayload struct {
	Number       string `json:"number" validate:"required,max=32"`
	SupplierName string `json:"supplier_name" validate:"required,max=200"`
	PartID       int64  `json:"part_id" validate:"required,gt=0"`
	Quantity     int64  `json:"quantity" validate:"required,gt=0"`
	UnitCents    int64  `json:"unit_cents" validate:"gte=0"`
}

type orderView struct {
	ID           int64  `json:"id"`
	Number       string `json:"number"`
	SupplierName string `json:"supplier_name"`
	PartID       int64  `json:"part_id"`
	Quantity     int64  `json:"quantity"`
	UnitCents    int64  `json:"unit_cents"`
	Status       string `json:"status"`
}

func toView(po PurchaseOrder) orderView {
	return orderView{
		ID:           po.ID,
		Number:       po.Number,
		SupplierName: po.SupplierName,
		PartID:       po.PartID,
		Quantity:     po.Quantity,
		UnitCents:    po.UnitCents,
		Status:       po.Status,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	list, err := h.service.List(r.Context(), auth.CompanyID)
	if err != nil {
		h.logger.Error("list purchase orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]orderView, len(list))
	for i, po := range list {
		out[i] = toView(po)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	po, err := h.service.Get(r.Context(), auth.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*po))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	var payload orderPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed purchase order payload")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	po, err := h.service.Create(r.Context(), PurchaseOrder{
		CompanyID:    auth.CompanyID,
		Number:       payload.Number,
		SupplierName: payload.SupplierName,
		PartID:       payload.PartID,
		Quantity:     payload.Quantity,
		UnitCents:    payload.UnitCents,
		CreatedBy:    auth.UserID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(*po))
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Submit)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Receive)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, companyID, id int64) (*PurchaseOrder, error)) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	po, err := fn(r.Context(), auth.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*po))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "purchase order not found")
	case errors.Is(err, ErrBadTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		httpx.Problem(w, http.StatusConflict, "Conflict", "ordered part no longer exists")
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
