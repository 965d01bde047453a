package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eduflex-api/internal/middleware"
	"github.com/noah-isme/eduflex-api/internal/service"
)

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	return parseUintValue(c.Params(name))
}

func parseUintValue(value string) (uint, error) {
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

// actorFromContext builds the acting identity from the JWT-populated locals.
func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{}
	if id, ok := c.Locals(middleware.LocalsUserID).(uint); ok {
		actor.ID = id
	}
	if role, ok := c.Locals(middleware.LocalsUserRole).(string); ok {
		actor.Role = role
	}
	return actor
}
