package handlers

import (
	"time"

	"fin-extractor/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, middleware.LocalUserID)
}

// getOrgID returns the active organization set by the session middleware.
func getOrgID(c *fiber.Ctx) (uuid.UUID, error) {
	return localUUID(c, middleware.LocalOrgID)
}

func localUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	s, ok := c.Locals(key).(string)
	if !ok || s == "" {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return uuid.Parse(s)
}

func getToken(c *fiber.Ctx) (string, time.Time) {
	tokenID, _ := c.Locals(middleware.LocalTokenID).(string)
	expiresAt, _ := c.Locals(middleware.LocalTokenExpiresAt).(time.Time)
	return tokenID, expiresAt
}

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}
