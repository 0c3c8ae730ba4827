package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/schoolhub/records-api/database"
	"github.com/schoolhub/records-api/utils/response"
)

// HandleCheckHealth reports service liveness and database reachability
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database unreachable")
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
