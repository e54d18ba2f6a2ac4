package mw

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	viewerIDKey   = "viewerID"
	viewerRoleKey = "viewerRole"
)

// Viewer is the identity decoded from a host-app bearer token.
type Viewer struct {
	UserID string
	Role   string
}

// ViewerIdentity decodes an optional HS256 bearer token issued by the host
// application and stashes the viewer's id and role in the request context.
// The host has already authenticated the caller; this only decodes claims, so
// a missing or invalid token simply falls through to the query parameters.
func ViewerIdentity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return next(c)
			}
			authHeader := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return next(c)
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				log.Debug().Err(err).Msg("ignoring invalid viewer token")
				return next(c)
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return next(c)
			}
			if sub, _ := claims["sub"].(string); sub != "" {
				c.Set(viewerIDKey, sub)
			}
			if role, _ := claims["role"].(string); role != "" {
				c.Set(viewerRoleKey, role)
			}
			return next(c)
		}
	}
}

// ViewerFrom returns the viewer identity stored by ViewerIdentity, if any.
func ViewerFrom(c echo.Context) (Viewer, bool) {
	id, _ := c.Get(viewerIDKey).(string)
	role, _ := c.Get(viewerRoleKey).(string)
	if id == "" && role == "" {
		return Viewer{}, false
	}
	return Viewer{UserID: id, Role: role}, true
}
