package production

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/forgeline/forgeline/internal/authz"
	"github.com/forgeline/forgeline/internal/claims"
	"github.com/forgeline/forgeline/internal/inventory"
	"github.com/forgeline/forgeline/internal/platform/httpx"
)

// Module is the claims module name guarding these routes.
const Module = "production"

// Handler wires work order endpoints.
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

// MountRoutes registers work order routes. Completion books finished goods
// into stock, so it demands update on both production and parts.
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
		r.Post("/{id}/release", h.release)
		r.Post("/{id}/cancel", h.cancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Update: []string{Module, inventory.Module}}))
		r.Post("/{id}/complete", h.complete)
	})
}

type workOrderPayload struct {
	Number   string `json:"number" validate:"required,max=32"`
	PartID   int64  `json:"part_id" validate:"required,gt=0"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
	DueDate  string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type workOrderView struct {
	ID       int64  `json:"id"`
	Number   string `json:"number"`
	PartID   int64  `json:"part_id"`
	Quantity int64  `json:"quantity"`
	Status   string `json:"status"`
	DueDate  string `json:"due_date,omitempty"`
}

func toView(wo WorkOrder) workOrderView {
	view := workOrderView{
		ID:       wo.ID,
		Number:   wo.Number,
		PartID:   wo.PartID,
		Quantity: wo.Quantity,
		Status:   wo.Status,
	}
	if wo.DueDate != nil {
		view.DueDate = wo.DueDate.Format("2006-01-02")
	}
	return view
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	list, err := h.service.List(r.Context(), auth.CompanyID)
	if err != nil {
		h.logger.Error("list work orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]workOrderView, len(list))
	for i, wo := range list {
		out[i] = toView(wo)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	wo, err := h.service.Get(r.Context(), auth.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*wo))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	var payload workOrderPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed work order payload")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	wo := WorkOrder{
		CompanyID: auth.CompanyID,
		Number:    payload.Number,
		PartID:    payload.PartID,
		Quantity:  payload.Quantity,
		CreatedBy: auth.UserID,
	}
	if payload.DueDate != "" {
		due, err := time.Parse("2006-01-02", payload.DueDate)
		if err == nil {
			wo.DueDate = &due
		}
	}
	created, err := h.service.Create(r.Context(), wo)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(*created))
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Release)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, companyID, id int64) (*WorkOrder, error)) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	wo, err := fn(r.Context(), auth.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*wo))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "work order not found")
	case errors.Is(err, ErrBadTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, inventory.ErrNotFound):
		httpx.Problem(w, http.StatusConflict, "Conflict", "produced part no longer exists")
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
