package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreatePlaylist handles POST /api/v1/playlists
// @Summary Create a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,description=string} true "Playlist"
// @Success 201 {object} models.APIResponse
// @Router /playlists [post]
func (s *Server) CreatePlaylist(c *fiber.Ctx) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	playlist, err := s.playlistService.CreatePlaylist(c.UserContext(), middleware.UserID(c), req.Name, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, playlist, "Playlist created successfully")
}

// GetPlaylist handles GET /api/v1/playlists/:playlistId
// @Summary Playlist with its published videos
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /playlists/{playlistId} [get]
func (s *Server) GetPlaylist(c *fiber.Ctx) error {
	playlistID, err := s.parseID(c, "playlistId")
	if err != nil {
		return nil
	}

	playlist, err := s.playlistService.GetPlaylist(c.UserContext(), playlistID)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Playlist fetched successfully")
}

// GetUserPlaylists handles GET /api/v1/playlists/user/:userId
// @Summary Playlists owned by a user
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {object} models.APIResponse
// @Router /playlists/user/{userId} [get]
func (s *Server) GetUserPlaylists(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	page, err := s.playlistService.ListUserPlaylists(c.UserContext(), userID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Playlists fetched successfully")
}

// UpdatePlaylist handles PATCH /api/v1/playlists/:playlistId
// @Summary Rename or redescribe a playlist
// @Tags playlists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Param request body object{name=string,description=string} true "Changes"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /playlists/{playlistId} [patch]
func (s *Server) UpdatePlaylist(c *fiber.Ctx) error {
	playlistID, err := s.parseID(c, "playlistId")
	if err != nil {
		return nil
	}
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	playlist, err := s.playlistService.UpdatePlaylist(c.UserContext(), playlistID, middleware.UserID(c), service.PlaylistInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Playlist updated successfully")
}

// DeletePlaylist handles DELETE /api/v1/playlists/:playlistId
// @Summary Delete a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /playlists/{playlistId} [delete]
func (s *Server) DeletePlaylist(c *fiber.Ctx) error {
	playlistID, err := s.parseID(c, "playlistId")
	if err != nil {
		return nil
	}

	if err := s.playlistService.DeletePlaylist(c.UserContext(), playlistID, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Playlist deleted successfully")
}

// membershipIDs reads the /:videoId/:playlistId pair shared by add and remove.
func (s *Server) membershipIDs(c *fiber.Ctx) (videoID, playlistID uint, err error) {
	if videoID, err = s.parseID(c, "videoId"); err != nil {
		return 0, 0, err
	}
	if playlistID, err = s.parseID(c, "playlistId"); err != nil {
		return 0, 0, err
	}
	return videoID, playlistID, nil
}

// AddVideoToPlaylist handles PATCH /api/v1/playlists/add/:videoId/:playlistId
// @Summary Add a video to a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /playlists/add/{videoId}/{playlistId} [patch]
func (s *Server) AddVideoToPlaylist(c *fiber.Ctx) error {
	videoID, playlistID, err := s.membershipIDs(c)
	if err != nil {
		return nil
	}

	playlist, err := s.playlistService.AddVideo(c.UserContext(), playlistID, videoID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Video added to playlist successfully")
}

// RemoveVideoFromPlaylist handles PATCH /api/v1/playlists/remove/:videoId/:playlistId
// @Summary Remove a video from a playlist
// @Tags playlists
// @Produce json
// @Security BearerAuth
// @Param videoId path int true "Video ID"
// @Param playlistId path int true "Playlist ID"
// @Success 200 {object} models.APIResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /playlists/remove/{videoId}/{playlistId} [patch]
func (s *Server) RemoveVideoFromPlaylist(c *fiber.Ctx) error {
	videoID, playlistID, err := s.membershipIDs(c)
	if err != nil {
		return nil
	}

	playlist, err := s.playlistService.RemoveVideo(c.UserContext(), playlistID, videoID, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, playlist, "Video removed from playlist successfully")
}
