package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/unrolled/secure"
)

// SecureHeaders sets the standard security response headers. HSTS is only
// emitted outside development.
func SecureHeaders(production bool) echo.MiddlewareFunc {
	s := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		STSSeconds:         31536000,
		IsDevelopment:      !production,
	})
	return echo.WrapMiddleware(s.Handler)
}
