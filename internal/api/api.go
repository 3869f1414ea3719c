package api

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/DivyeshVarade/grocery-scout/internal/entity"
)

// errorJSON maps domain errors onto HTTP status codes.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return c.JSON(404, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrInsufficientStock), errors.Is(err, entity.ErrNoMatchedIngredients):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrUnauthorized):
		return c.JSON(403, map[string]string{"error": err.Error()})
	case errors.Is(err, entity.ErrUpstreamUnavailable):
		return c.JSON(502, map[string]string{"error": err.Error()})
	default:
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
}

// currentUser extracts the authenticated identity from the JWT placed in the
// context by the echo-jwt middleware.
func currentUser(c echo.Context) (int, entity.Role, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0, "", false
	}
	role, _ := claims["role"].(string)
	return int(id), entity.Role(role), true
}

// RequireRole rejects requests whose JWT does not carry one of the given roles.
func RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			_, role, ok := currentUser(c)
			if !ok {
				return c.JSON(401, map[string]string{"error": "invalid token"})
			}
			for _, allowed := range roles {
				if role == allowed {
					return next(c)
				}
			}
			return c.JSON(403, map[string]string{"error": "forbidden"})
		}
	}
}
