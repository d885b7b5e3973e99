package server

import (
	"vidtube/internal/featureflags"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetVideoComments lists a video's comments, newest first.
func (s *Server) GetVideoComments(c *fiber.Ctx) error {
	videoID, err := s.parseID(c, "videoId")
	if err != nil {
		return nil
	}

	page, err := s.commentService.ListVideoComments(c.UserContext(), videoID, middleware.UserID(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Comments fetched successfully")
}

// AddComment comments on a published video, optionally replying to another
// comment on the same video.
func (s *Server) AddComment(c *fiber.Ctx) error {
	videoID, err := s.parseID(c, "videoId")
	if err != nil {
		return nil
	}
	var req struct {
		Content         string `json:"content"`
		ParentCommentID *uint  `json:"parentCommentId"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.ParentCommentID != nil && !s.featureFlags.Enabled(featureflags.CommentReplies, middleware.UserID(c)) {
		return respondError(c, models.NewValidationError("Replies are not enabled"))
	}

	comment, err := s.commentService.AddComment(c.UserContext(), service.AddCommentInput{
		VideoID:         videoID,
		UserID:          middleware.UserID(c),
		Username:        viewerName(c),
		Content:         req.Content,
		ParentCommentID: req.ParentCommentID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, comment, "Comment added successfully")
}

// UpdateComment edits the caller's own comment.
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), commentID, middleware.UserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, comment, "Comment updated successfully")
}

// DeleteComment removes the caller's own comment and the likes on it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), commentID, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Comment deleted successfully")
}
