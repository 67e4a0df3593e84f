// Package middleware holds HTTP middleware for the catalog API.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// contentSecurityPolicy forbids every sub-resource and all framing.
const contentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'"

// SecurityHeaders sets the response headers for a JSON-only API. Responses
// whose path starts with one of noStore are marked uncacheable.
func SecurityHeaders(noStore ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			h.Set("Referrer-Policy", "no-referrer")
			// disables the legacy XSS auditor
			h.Set("X-XSS-Protection", "0")

			path := c.Request().URL.Path
			for _, prefix := range noStore {
				if strings.HasPrefix(path, prefix) {
					h.Set("Cache-Control", "no-store")
					break
				}
			}

			return next(c)
		}
	}
}
