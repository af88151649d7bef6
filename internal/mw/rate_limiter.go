package mw

import (
	"net/http"

	"github.com/ulule/limiter/v3"
)

// RateLimiter режет по отправителю, ключ - заголовок sender либо адрес.
func RateLimiter(l *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sender := r.Header.Get("X-Sender")
			if sender == "" {
				sender = r.RemoteAddr
			}

			limiterCtx, err := l.Get(r.Context(), sender)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			if limiterCtx.Reached {
				http.Error(w, "rate limited", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
