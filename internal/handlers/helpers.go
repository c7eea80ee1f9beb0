package handlers

import (
	"strconv"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/dto"
	"github.com/gofiber/fiber/v2"
)

const msgInvalidBody = "invalid request body"

// parseBody decodes the JSON body into v and runs struct validation.
func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperr.Validation(msgInvalidBody, err)
	}
	return dto.Validate(v)
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(name + " must be a positive integer")
	}
	return uint(id), nil
}
