package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/response"
	"github.com/suzuhara/media-api/internal/utils"
)

// TokenTTL is how long issued tokens stay valid. Overridden from config in
// main.
var TokenTTL = 24 * time.Hour

func LoginHandler(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, response.CodeValidation, "VALIDATION_ERROR")
	}

	if body.Username == "" || body.Password == "" {
		return response.ValidationError(c, map[string]string{
			"username": "username is required",
			"password": "password is required",
		})
	}

	var u models.User
	if err := database.DB.Where("username = ?", body.Username).First(&u).Error; err != nil {
		return response.Unauthorized(c, "INVALID_CREDENTIALS")
	}
	if !utils.CheckPassword(body.Password, u.PasswordHash) {
		return response.Unauthorized(c, "INVALID_CREDENTIALS")
	}

	token, err := utils.GenerateJWT(u.ID, u.Role, TokenTTL)
	if err != nil {
		return response.InternalError(c)
	}

	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    token,
		Expires:  time.Now().Add(TokenTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return response.Success(c, fiber.Map{
		"access_token": token,
		"user":         u,
	}, "Login successful")
}

func LogoutHandler(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: "Lax",
	})
	return response.Success(c, nil, "Logged out")
}

func MeHandler(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return response.Unauthorized(c, "UNAUTHORIZED")
	}
	return response.Success(c, user, "")
}
