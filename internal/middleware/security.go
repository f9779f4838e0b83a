package middleware

import (
	"github.com/labstack/echo/v4"
)

// CredentialHeader reports whether the upstream credential is configured.
// Its value is "present" or "missing", never the credential itself.
const CredentialHeader = "X-Proxy-Credential"

// SecurityHeaders returns an Echo middleware that adds security headers to
// every response.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Set before next: headers are flushed on the first write.
			c.Response().Header().Set("X-Content-Type-Options", "nosniff")
			c.Response().Header().Set("X-Frame-Options", "DENY")

			return next(c)
		}
	}
}

// EdgeHeaders returns an Echo middleware that stamps every response, including
// errors and router misses, with a wildcard CORS origin and the credential
// diagnostic header.
func EdgeHeaders(credentialState string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(CredentialHeader, credentialState)
			return next(c)
		}
	}
}
