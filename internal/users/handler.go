package users

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/forgeline/forgeline/internal/authz"
	"github.com/forgeline/forgeline/internal/claims"
	"github.com/forgeline/forgeline/internal/platform/httpx"
	"github.com/forgeline/forgeline/jobs"
)

// PermissionQueue enqueues permission mutations; implemented by jobs.Client.
type PermissionQueue interface {
	EnqueueClaimsUpdate(ctx context.Context, payload jobs.ClaimsUpdatePayload) (*asynq.TaskInfo, error)
}

// Handler wires user administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	queue     PermissionQueue
	guard     authz.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, queue PermissionQueue, guard authz.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		queue:     queue,
		guard:     guard,
		validator: validator.New(),
	}
}

// MountRoutes registers user admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{View: []string{"users"}}))
		r.Get("/", h.listUsers)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(claims.Requirement{Update: []string{"users"}}))
		r.Post("/{id}/permissions", h.updatePermissions)
	})
}

type userView struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	auth := authz.FromContext(r.Context())
	list, err := h.service.ListByCompany(r.Context(), auth.CompanyID)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userView, len(list))
	for i, u := range list {
		out[i] = userView{ID: u.ID, Email: u.Email, Name: u.Name, IsActive: u.IsActive}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type permissionsRequest struct {
	Mode   claims.Mode                 `json:"mode" validate:"required,oneof=additive replace"`
	Grants map[string]claims.ActionSet `json:"grants" validate:"required,min=1"`
}

type permissionsResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
}

// updatePermissions validates the requested delta and enqueues the mutation
// task. The actual merge runs in the worker, which re-verifies that the
// acting user holds the users-update capability.
func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	targetID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || targetID <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user id")
		return
	}
	var req permissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed permissions payload")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "mode and at least one module grant are required")
		return
	}

	auth := authz.FromContext(r.Context())
	info, err := h.queue.EnqueueClaimsUpdate(r.Context(), jobs.ClaimsUpdatePayload{
		ActorID:   auth.UserID,
		UserID:    targetID,
		CompanyID: auth.CompanyID,
		Grants:    claims.Delta(req.Grants),
		Mode:      req.Mode,
	})
	if err != nil {
		h.logger.Error("enqueue claims update", slog.Any("error", err))
		httpx.Problem(w, http.StatusServiceUnavailable, "Queue Unavailable", "could not queue the permission change")
		return
	}

	h.logger.Info("claims update queued",
		slog.Int64("actor_id", auth.UserID),
		slog.Int64("target_id", targetID),
		slog.Int64("company_id", auth.CompanyID),
		slog.String("task_id", info.ID),
	)
	httpx.JSON(w, http.StatusAccepted, permissionsResponse{TaskID: info.ID, Queue: info.Queue})
}
