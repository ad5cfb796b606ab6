package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/response"
	"github.com/suzuhara/media-api/internal/utils"
)

// JWTProtected accepts a Bearer token or, for browser clients, the
// access_token cookie set by login.
func JWTProtected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := ""

		authHeader := c.Get("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return response.Unauthorized(c, "INVALID_TOKEN_FORMAT")
			}
			tokenStr = parts[1]
		} else {
			tokenStr = c.Cookies("access_token")
		}

		if tokenStr == "" {
			return response.Unauthorized(c, "UNAUTHORIZED")
		}

		userID, err := utils.ParseJWT(tokenStr)
		if err != nil || userID == 0 {
			return response.Unauthorized(c, "INVALID_TOKEN")
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// RoleProtected allows only the listed roles past. Runs after JWTProtected.
func RoleProtected(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return response.Unauthorized(c, "UNAUTHORIZED")
		}

		for _, role := range allowedRoles {
			if user.Role == role {
				return c.Next()
			}
		}

		return response.Forbidden(c)
	}
}

// CurrentUser loads the authenticated user from the user_id local set by
// JWTProtected.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("user_id").(uint)
	if !ok {
		return nil, errors.New("no authenticated user")
	}

	var u models.User
	if err := database.DB.First(&u, userID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
