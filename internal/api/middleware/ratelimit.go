package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/labstack/echo/v4"
)

// RateLimit limits requests per client IP to perMinute. Excess requests get
// a 429 in the usual error envelope.
func RateLimit(perMinute int) echo.MiddlewareFunc {
	limiter := httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too Many Requests","message":"Too many attempts, try again later"}`))
		}),
	)
	return echo.WrapMiddleware(limiter)
}
