package middleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// NewSubmitLimiter converts a per-minute budget into a token bucket. A zero
// budget disables throttling and returns nil.
func NewSubmitLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	burst := perMinute / 6
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
}

// Throttle rejects requests with 429 once limiter is exhausted. A nil limiter
// passes everything through.
func Throttle(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "2")
				http.Error(w, `{"error":"too many submissions, slow down"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
