package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetVideo handles GET /api/v1/videos/:videoId
// @Summary Video detail
// @Description Records a view and, for signed-in viewers, a watch history entry
// @Tags videos
// @Produce json
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{videoId} [get]
func (s *Server) GetVideo(c *fiber.Ctx) error {
	videoID, err := s.parseID(c, "videoId")
	if err != nil {
		return nil
	}

	detail, err := s.videoService.GetVideoDetail(c.UserContext(), videoID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, detail, "Video details fetched successfully")
}

func listInput(c *fiber.Ctx) service.ListVideosInput {
	return service.ListVideosInput{
		Query:    c.Query("query"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		Page:     parsePage(c),
	}
}

// ListVideos handles GET /api/v1/videos
// @Summary Browse published videos
// @Tags videos
// @Produce json
// @Param query query string false "Title filter"
// @Param sortBy query string false "createdAt, views, duration or title"
// @Param sortType query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse
// @Router /videos [get]
func (s *Server) ListVideos(c *fiber.Ctx) error {
	page, err := s.videoService.ListVideos(c.UserContext(), listInput(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Videos fetched successfully")
}

// SearchVideos handles GET /api/v1/videos/search
// @Summary Search published videos
// @Tags videos
// @Produce json
// @Param query query string true "Search text"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /videos/search [get]
func (s *Server) SearchVideos(c *fiber.Ctx) error {
	page, err := s.videoService.SearchVideos(c.UserContext(), c.Query("query"), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Search results fetched successfully")
}

// ListChannelVideos handles GET /api/v1/videos/user/:username
// @Summary Videos of a channel
// @Description Owners also see their drafts
// @Tags videos
// @Produce json
// @Param username path string true "Channel username"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/user/{username} [get]
func (s *Server) ListChannelVideos(c *fiber.Ctx) error {
	page, err := s.videoService.ListChannelVideos(c.UserContext(), c.Params("username"), middleware.UserID(c), listInput(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Channel videos fetched successfully")
}

// PublishVideo handles POST /api/v1/videos
// @Summary Publish a video
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{title=string,description=string,videoFile=models.MediaAsset,thumbnail=models.MediaAsset,duration=number,draft=bool} true "Video"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /videos [post]
func (s *Server) PublishVideo(c *fiber.Ctx) error {
	var req struct {
		Title       string            `json:"title"`
		Description string            `json:"description"`
		VideoFile   models.MediaAsset `json:"videoFile"`
		Thumbnail   models.MediaAsset `json:"thumbnail"`
		Duration    float64           `json:"duration"`
		Draft       bool              `json:"draft"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	video, err := s.videoService.PublishVideo(c.UserContext(), service.PublishVideoInput{
		OwnerID:     middleware.UserID(c),
		Title:       req.Title,
		Description: req.Description,
		VideoFile:   req.VideoFile,
		Thumbnail:   req.Thumbnail,
		Duration:    req.Duration,
		Draft:       req.Draft,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, video, "Video published successfully")
}

// UpdateVideo handles PATCH /api/v1/videos/:videoId
// @Summary Update a video
// @Tags videos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param request body object{title=string,description=string,thumbnail=models.MediaAsset} true "Changes"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /videos/{videoId} [patch]
func (s *Server) UpdateVideo(c *fiber.Ctx) error {
	videoID, err := s.parseID(c, "videoId")
	if err != nil {
		return nil
	}
	var req struct {
		Title       *string            `json:"title"`
		Description *string            `json:"description"`
		Thumbnail   *models.MediaAsset `json:"thumbnail"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	video, err := s.videoService.UpdateVideo(c.UserContext(), service.UpdateVideoInput{
		UserID:      middleware.UserID(c),
		VideoID:     videoID,
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, video, "Video updated successfully")
}

// TogglePublish handles PATCH /api/v1/videos/:videoId/toggle-publish
// @Summary Publish or unpublish a video
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /videos/{videoId}/toggle-publish [patch]
func (s *Server) TogglePublish(c *fiber.Ctx) error {
	videoID, err := s.parseID(c, "videoId")
	if err != nil {
		return nil
	}

	published, err := s.videoService.TogglePublish(c.UserContext(), videoID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"isPublished": published}, "Publish status toggled successfully")
}

// DeleteVideo handles DELETE /api/v1/videos/:videoId
// @Summary Delete a video
// @Description Removes the video with its likes, comments, playlist entries, history and media
// @Tags videos
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /videos/{videoId} [delete]
func (s *Server) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := s.parseID(c, "videoId")
	if err != nil {
		return nil
	}

	if err := s.videoService.DeleteVideo(c.UserContext(), videoID, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Video deleted successfully")
}
