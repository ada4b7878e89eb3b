package authz

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/forgeline/forgeline/internal/claims"
	"github.com/forgeline/forgeline/internal/platform/httpx"
	"github.com/forgeline/forgeline/internal/shared"
)

// Middleware guards HTTP routes with gate checks.
type Middleware struct {
	Gate       *Gate
	Logger     *slog.Logger
	DeniedPath string
}

// Require runs the gate for every request with the given requirement. On
// success the Authorization lands in the request context. Authentication
// failures send the caller to the login page; denials flash a generic
// message and redirect to the configured safe path, while the specific
// missing grant is only logged.
func (m Middleware) Require(req claims.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			token := ""
			if sess != nil {
				token = sess.ID
			}
			auth, err := m.Gate.Authorize(r.Context(), token, req)
			if err != nil {
				m.reject(w, r, sess, err)
				return
			}
			ctx := WithAuthorization(r.Context(), auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m Middleware) reject(w http.ResponseWriter, r *http.Request, sess *shared.Session, err error) {
	if errors.Is(err, ErrUnauthenticated) {
		if wantsJSON(r) {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in to continue")
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	var denied *DeniedError
	if errors.As(err, &denied) && m.Logger != nil {
		m.Logger.Warn("access denied",
			slog.Int64("user_id", denied.UserID),
			slog.Int64("company_id", denied.CompanyID),
			slog.String("path", r.URL.Path),
			slog.Any("requirement", denied.Requirement),
		)
	}
	if wantsJSON(r) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "you do not have access to this resource")
		return
	}
	if sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "You do not have access to that page."})
	}
	target := m.DeniedPath
	if target == "" {
		target = "/"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
