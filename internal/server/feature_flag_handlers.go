package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns the evaluated feature flags for the current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, s.featureFlags.Snapshot(middleware.UserID(c)), "Feature flags fetched successfully")
}
