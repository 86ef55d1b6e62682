package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/wedora/wedding-marketplace/booking-service/internal/identity"
)

const principalKey = "principal"

// JWT authenticates requests with a bearer token and stores the extracted
// principal on the request context. Claims carry the user's primary id (sub),
// the vendor business id when the issuer knows it, and the role.
func JWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}

			c.Set(principalKey, identity.Principal{
				PrimaryID:   stringClaim(claims, "sub"),
				SecondaryID: stringClaim(claims, "vendor_id"),
				Role:        stringClaim(claims, "role"),
			})

			return next(c)
		}
	}
}

// PrincipalFromContext returns the principal stored by the JWT middleware.
func PrincipalFromContext(c echo.Context) (identity.Principal, bool) {
	p, ok := c.Get(principalKey).(identity.Principal)
	return p, ok
}

// SetPrincipal is a test hook for handler tests that bypass the middleware.
func SetPrincipal(c echo.Context, p identity.Principal) {
	c.Set(principalKey, p)
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
