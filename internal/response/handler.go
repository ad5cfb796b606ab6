package response

import (
	"github.com/gofiber/fiber/v2"
)

// Error codes are stable numeric identifiers carried alongside the HTTP
// status, so clients can branch on semantics rather than on the status alone.
const (
	CodeNoFiles           = 40000
	CodeEmptyFile         = 40001
	CodeFileTooLarge      = 40002
	CodeInvalidTakenAt    = 40003
	CodeInvalidVisibility = 40004
	CodeMediaNotInAlbum   = 40005
	CodeInvalidTagName    = 40006
	CodeUnauthorized      = 40100
	CodeNoPermission      = 40301
	CodeNotFound          = 40400
	CodeMediaDuplicate    = 40900
	CodeTagExists         = 40901
	CodeValidation        = 42200
	CodeInternal          = 50000
)

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    int         `json:"code"`
	Reason  string      `json:"reason"`
	Details interface{} `json:"details,omitempty"`
}

func Success(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Created(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusCreated).JSON(StandardResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func Error(c *fiber.Ctx, statusCode int, code int, reason string, details interface{}) error {
	return c.Status(statusCode).JSON(StandardResponse{
		Success: false,
		Error: &ErrorDetail{
			Code:    code,
			Reason:  reason,
			Details: details,
		},
	})
}

func BadRequest(c *fiber.Ctx, code int, reason string) error {
	return Error(c, fiber.StatusBadRequest, code, reason, nil)
}

func Unauthorized(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusUnauthorized, CodeUnauthorized, reason, nil)
}

func Forbidden(c *fiber.Ctx) error {
	return Error(c, fiber.StatusForbidden, CodeNoPermission, "NO_PERMISSION", nil)
}

func NotFound(c *fiber.Ctx, reason string) error {
	return Error(c, fiber.StatusNotFound, CodeNotFound, reason, nil)
}

func Conflict(c *fiber.Ctx, code int, reason string) error {
	return Error(c, fiber.StatusConflict, code, reason, nil)
}

func ValidationError(c *fiber.Ctx, details interface{}) error {
	return Error(c, fiber.StatusUnprocessableEntity, CodeValidation, "VALIDATION_ERROR", details)
}

func InternalError(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, CodeInternal, "INTERNAL_ERROR", nil)
}
