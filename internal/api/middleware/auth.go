package middleware

import (
	"errors"
	"net/http"

	"indoors/internal/api/util"
)

type AuthMiddleware struct {
	secret string
}

// NewAuthMiddleware checks HS256 bearer tokens signed with secret. An empty
// secret disables authentication.
func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	if m.secret == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token, err := util.GetBearerToken(r)
		if errors.Is(err, util.ErrMalformedToken) {
			http.Error(w, "Authorization header must be Bearer <token>", http.StatusUnauthorized)
			return
		}
		if err != nil {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := util.ParseToken(m.secret, token)
		if err != nil {
			http.Error(w, "Invalid authorization token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(util.WithSubject(r.Context(), claims.Subject)))
	})
}
