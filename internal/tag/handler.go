package tag

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/response"
)

type CreateTagRequest struct {
	Name string `json:"name"`
}

func ListHandler(c *fiber.Ctx) error {
	var tags []models.Tag
	if err := database.DB.Order("name asc").Find(&tags).Error; err != nil {
		return response.InternalError(c)
	}
	return response.Success(c, tags, "")
}

func CreateHandler(c *fiber.Ctx) error {
	var body CreateTagRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, response.CodeValidation, "VALIDATION_ERROR")
	}

	name := strings.TrimSpace(body.Name)
	if name == "" || len(name) > 128 {
		return response.BadRequest(c, response.CodeInvalidTagName, "INVALID_TAG_NAME")
	}

	var existing models.Tag
	if err := database.DB.Where("name = ?", name).First(&existing).Error; err == nil {
		return response.Conflict(c, response.CodeTagExists, "TAG_EXISTS")
	}

	t := models.Tag{Name: name}
	if err := database.DB.Create(&t).Error; err != nil {
		return response.InternalError(c)
	}

	return response.Created(c, t, "Tag created successfully")
}
