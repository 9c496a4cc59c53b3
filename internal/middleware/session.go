package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayush/research-intelligence/internal/session"
)

// Session resolves the session cookie to a controller and injects both into
// the request context. Missing or expired sessions get a new cookie.
func Session(reg *session.Registry, ttl time.Duration, log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(session.CookieName); err == nil {
				id = cookie.Value
			}

			sid, ctrl, created, err := reg.Resolve(r.Context(), id)
			if err != nil {
				log.WithError(err).Error("resolve session")
				http.Error(w, `{"error":"session unavailable"}`, http.StatusServiceUnavailable)
				return
			}

			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     session.CookieName,
					Value:    sid,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(ttl / time.Second),
				})
			}

			ctx := session.NewContext(r.Context(), sid, ctrl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
