// Package response builds the {code, data, message} envelope for handlers.
package response

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/gofiber/fiber/v2"
)

const internalMessage = "internal error"

// Success writes HTTP 200 with code 200.
func Success(c *fiber.Ctx, data any, message ...string) error {
	msg := "success"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return c.Status(fiber.StatusOK).JSON(dto.Response{
		Code:    dto.CodeSuccess,
		Data:    data,
		Message: msg,
	})
}

// Error writes an error envelope whose HTTP status matches code.
func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(dto.Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, dto.CodeBadRequest, message)
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, dto.CodeUnauthorized, message)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, dto.CodeNotFound, message)
}

// FromError maps err onto the envelope. Unknown errors become a logged 500.
func FromError(c *fiber.Ctx, err error) error {
	if e, ok := apperr.As(err); ok {
		if e.Code >= fiber.StatusInternalServerError {
			slog.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"trace_id", traceID(c),
				"error", err.Error(),
			)
			if e.Kind == apperr.KindInternal {
				return Error(c, e.Code, internalMessage)
			}
		}
		return Error(c, e.Code, e.Message)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		return Error(c, fe.Code, fe.Message)
	}

	slog.Error("unhandled error",
		"method", c.Method(),
		"path", c.Path(),
		"trace_id", traceID(c),
		"error", err.Error(),
	)
	return Error(c, dto.CodeInternal, internalMessage)
}

func traceID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
