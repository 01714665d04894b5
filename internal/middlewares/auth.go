package middlewares

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms8-gateway-service/pkg/logger"
	"github.com/onurcolak/sms8-gateway-service/pkg/response"
)

const (
	APIKeyHeader = "x-auth-key"

	bearerPrefix = "Bearer "
)

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// presentedKey reads the caller's key from x-auth-key, falling back to a
// bearer token for workflow engines that only send Authorization headers.
func presentedKey(c echo.Context) string {
	if key := c.Request().Header.Get(APIKeyHeader); key != "" {
		return key
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, bearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
	}

	return ""
}

// APIKeyAuth protects an endpoint group. group only labels log lines.
func APIKeyAuth(group, apiKey string) echo.MiddlewareFunc {
	if apiKey == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.InternalServerError(
					c,
					fmt.Errorf("API key is not configured for the %s endpoints", group),
				)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := presentedKey(c)
			if token == "" || !secureCompare(token, apiKey) {
				logger.Warnf("[Auth] rejected %s %s for %s endpoints from %s",
					c.Request().Method, c.Request().URL.Path, group, c.RealIP())
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}
