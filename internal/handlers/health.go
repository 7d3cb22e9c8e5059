package handlers

import (
	"nimwema/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

// Health reports service liveness and its dependencies.
func Health(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}

	if repositories.DB != nil {
		if sqlDB, err := repositories.DB.DB(); err != nil || sqlDB.Ping() != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
		}
	}
	if repositories.CacheService != nil {
		if err := repositories.CacheService.HealthCheck(c.Context()); err != nil {
			status["status"] = "degraded"
			status["cache"] = "unreachable"
		}
	}

	return c.JSON(status)
}
