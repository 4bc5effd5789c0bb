package auth

import (
	"net/http"
	"strings"

	"github.com/Lukas5x5/Woelfleder-Kunden/internal/config"
	"go.uber.org/zap"
)

// Middleware authenticates requests with a bearer token.
type Middleware struct {
	validator *JWTValidator
	logger    *zap.Logger
}

func NewMiddleware(cfg *config.Config, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator: NewJWTValidator(&cfg.Auth),
		logger:    logger,
	}
}

// Validator exposes the token validator, e.g. to issue development tokens.
func (m *Middleware) Validator() *JWTValidator {
	return m.validator
}

// Authenticate rejects requests without a valid bearer token and stores the
// user in the request context. Browsers cannot set headers on EventSource
// connections, so an access_token query parameter is accepted as well.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.validator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("user_id", userCtx.OwnerID()),
		)
		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return ""
		}
		return strings.TrimSpace(parts[1])
	}
	return r.URL.Query().Get("access_token")
}
