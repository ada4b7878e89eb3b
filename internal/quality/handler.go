package quality

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
const Module = "quality"

// Handler wires inspection endpoints.
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

// MountRoutes registers inspection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{View: []string{Module}}))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Create: []string{Module}}))
		r.Post("/", h.open)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Update: []string{Module}}))
		r.Post("/{id}/close", h.close)
	})
}

type openPayload struct {
	PartID      int64  `json:"part_id" validate:"required,gt=0"`
	WorkOrderID int64  `json:"work_order_id" validate:"gte=0"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type closePayload struct {
	Result string `json:"result" validate:"required,oneof=pass fail"`
	Notes  string `json:"notes" validate:"max=2000"`
}

type inspectionView struct {
	ID          int64  `json:"id"`
	PartID      int64  `json:"part_id"`
	WorkOrderID int64  `json:"work_order_id,omitempty"`
	Result      string `json:"result"`
	Notes       string `json:"notes"`
	Open        bool   `json:"open"`
}

func toView(in Inspection) inspectionView {
	return inspectionView{
		ID:          in.ID,
		PartID:      in.PartID,
		WorkOrderID: in.WorkOrderID,
		Result:      in.Result,
		Notes:       in.Notes,
		Open:        in.Open(),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	list, err := h.service.List(r.Context(), auth.CompanyID)
	if err != nil {
		h.logger.Error("list inspections", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]inspectionView, len(list))
	for i, in := range list {
		out[i] = toView(in)
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	in, err := h.service.Get(r.Context(), auth.CompanyID, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*in))
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	var payload openPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed inspection payload")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in, err := h.service.Open(r.Context(), Inspection{
		CompanyID:   auth.CompanyID,
		PartID:      payload.PartID,
		WorkOrderID: payload.WorkOrderID,
		Notes:       payload.Notes,
		InspectedBy: auth.UserID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(*in))
}

func (h *Handler) close(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var payload closePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed result payload")
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in, err := h.service.Close(r.Context(), auth.CompanyID, id, payload.Result, payload.Notes, auth.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toView(*in))
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "inspection not found")
	case errors.Is(err, ErrAlreadyClosed):
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
