package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

// Middleware authenticates bearer tokens and enforces roles on chi routes.
type Middleware struct {
	*transport.BaseHandler
	tokens TokenValidator
}

func NewMiddleware(base *transport.BaseHandler, tokens TokenValidator) *Middleware {
	return &Middleware{
		BaseHandler: base,
		tokens:      tokens,
	}
}

// Authenticate puts the caller's id and role on the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)
		if token == "" {
			m.WriteError(w, r, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			m.WriteError(w, r, err)
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), claims.UserID)
		ctx = internal.ContextWithRole(ctx, claims.Role)
		ctx = logger.With(ctx, "user_id", claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole lets only callers holding one of roles through. It must run after Authenticate.
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := internal.UserIDFromContext(r.Context())
			if userID == "" {
				m.Logger.Warn("authorization check failed: user not found in context")
				m.WriteError(w, r, internal.NewUnauthorizedError("unauthorized", internal.ErrCodeInvalidToken))
				return
			}

			role := internal.RoleFromContext(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			m.Logger.WarnContext(r.Context(), "access denied: insufficient role",
				slog.String("user_id", userID),
				slog.String("role", role),
				slog.Any("required_roles", roles))
			m.WriteError(w, r, internal.ErrInsufficientRole)
		})
	}
}
