package sales

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
const Module = "sales"

// Handler wires quotation endpoints.
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

// MountRoutes registers quotation routes, one guard group per action.
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
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Delete: []string{Module}}))
		r.Delete("/{id}", h.delete)
	})
}

type quotationPayload struct {
	Number       string `json:"number" validate:"required,max=32"`
	CustomerName string `json:"customer_name" validate:"required,max=200"`
	Status       string `json:"status" validate:"omitempty,oneof=draft sent accepted rejected"`
	TotalCents   int64  `json:"total_cents" validate:"gte=0"`
	Notes        string `json:"notes" validate:"max=2000"`
}

type quotationView struct {
	ID           int64  `json:"id"`
	Number       string `json:"number"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
	TotalCents   int64  `json:"total_cents"`
	Notes        string `json:"notes"`
}

func toView(q Quotation) quotationView {
	return quotationView{
		ID:           q.ID,
		Number:       q.Number,
		CustomerName: q.CustomerName,
		Status:       q.Status,
		TotalCents:   q.TotalCents,
		Notes:        q.Notes,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	list, err := h.service.List(r.Context(), auth.CompanyID)
	if err != nil {
		h.logger.Error("list quotations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]quotationView, len(list))
	for i, q := range list {
		out[i] = toView(q)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	q, err := h.service.Get(r.Context(), auth.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*q))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	q, err := h.service.Create(r.Context(), Quotation{
		CompanyID:    auth.CompanyID,
		Number:       payload.Number,
		CustomerName: payload.CustomerName,
		Status:       payload.Status,
		TotalCents:   payload.TotalCents,
		Notes:        payload.Notes,
		CreatedBy:    auth.UserID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(*q))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	payload, ok := h.decode(w, r)
	if !ok {
		return
	}
	q, err := h.service.Update(r.Context(), Quotation{
		ID:           id,
		CompanyID:    auth.CompanyID,
		Number:       payload.Number,
		CustomerName: payload.CustomerName,
		Status:       payload.Status,
		TotalCents:   payload.TotalCents,
		Notes:        payload.Notes,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*q))
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

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (quotationPayload, bool) {
	var payload quotationPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed quotation payload")
		return payload, false
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return payload, false
	}
	return payload, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "quotation not found")
	case errors.Is(err, ErrStatusLocked):
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
