package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/CaioAP/scuderia/internal/api/response"
	"github.com/CaioAP/scuderia/internal/auth"
)

// Auth resolves the viewer from "Authorization: Bearer <token>". Browsers
// cannot set headers on websocket handshakes, so a token query parameter is
// accepted as well.
func Auth(v *auth.Verifier, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "missing auth")
				return
			}
			claims, err := v.Verify(token)
			if err != nil {
				log.Debugw("rejected token", "path", r.URL.Path, "error", err)
				response.Error(w, http.StatusUnauthorized, "invalid auth")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), claims.User())))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}
		return strings.TrimSpace(token)
	}
	return r.URL.Query().Get("token")
}
