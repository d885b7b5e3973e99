package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetChannelAbout handles GET /api/v1/channels/:username/about
// @Summary Channel about page
// @Tags channels
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /channels/{username}/about [get]
func (s *Server) GetChannelAbout(c *fiber.Ctx) error {
	about, err := s.channelService.GetAbout(c.UserContext(), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, about, "Channel about fetched successfully")
}

// GetChannelStats handles GET /api/v1/dashboard/stats
// @Summary Dashboard totals for the caller's channel
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /dashboard/stats [get]
func (s *Server) GetChannelStats(c *fiber.Ctx) error {
	stats, err := s.channelService.Stats(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, stats, "Channel stats fetched successfully")
}

// GetChannelVideos handles GET /api/v1/dashboard/videos
// @Summary Every video of the caller's channel, drafts included
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /dashboard/videos [get]
func (s *Server) GetChannelVideos(c *fiber.Ctx) error {
	videos, err := s.channelService.DashboardVideos(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, videos, "Channel videos fetched successfully")
}
