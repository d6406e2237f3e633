package middleware

import (
	"net/http"

	"cadre-be/internal/auth"
	"cadre-be/internal/logger"
	"cadre-be/internal/problem"
	"cadre-be/internal/utils"

	"go.uber.org/zap"
)

// Authenticate attaches the caller to the request context when a valid
// token is present. Requests without one continue anonymously.
func Authenticate(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("ignoring invalid access token", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			problem.Write(w, r, problem.Unauthorized.WithDetail("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := utils.GetUserRoleFromContext(r.Context())
			if !allowed[role] {
				logger.FromCtx(r.Context()).Warn("role not allowed",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				problem.Write(w, r, problem.Forbidden.WithDetail("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
