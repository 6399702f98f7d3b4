package middleware

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hongminglow/homeride-be/internal/auth"
	"github.com/hongminglow/homeride-be/internal/http/respond"
)

// TokenValidator validates a raw session token.
type TokenValidator interface {
	Validate(raw string) (auth.Claims, error)
}

// Authenticate requires a valid session token, read from the Authorization
// header or, failing that, the session cookie. Every failure produces the same
// 401; only the log line distinguishes the cause.
func Authenticate(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := zerolog.Ctx(r.Context())

			raw, source := extractToken(r)
			if raw == "" {
				log.Warn().Str("reason", "missing token").Msg("authentication failed")
				unauthorized(w, r)
				return
			}

			claims, err := tokens.Validate(raw)
			if err != nil {
				log.Warn().Err(err).Str("source", source).Msg("authentication failed")
				unauthorized(w, r)
				return
			}

			subject, ok := auth.ResolveSubject(claims)
			if !ok {
				log.Warn().Str("reason", "no subject claim").Str("source", source).Msg("authentication failed")
				unauthorized(w, r)
				return
			}

			ctx := auth.WithIdentity(r.Context(), auth.Identity{Subject: subject, Claims: claims})
			l := log.With().Str("subject", subject.String()).Logger()
			next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
		})
	}
}

func extractToken(r *http.Request) (string, string) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			if token = strings.TrimSpace(token); token != "" {
				return token, "header"
			}
		}
	}
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		return c.Value, "cookie"
	}
	return "", ""
}

func unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="homeride"`)
	respond.Error(w, r, http.StatusUnauthorized, "unauthorized")
}
