package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

type tweetRequest struct {
	Content string `json:"content"`
}

// CreateTweet posts a short text update on the caller's channel.
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	var req tweetRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	tweet, err := s.tweetService.CreateTweet(c.UserContext(), middleware.UserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, tweet, "Tweet created successfully")
}

// GetUserTweets lists a user's tweets, newest first.
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	page, err := s.tweetService.ListUserTweets(c.UserContext(), userID, middleware.UserID(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Tweets fetched successfully")
}

// UpdateTweet edits the caller's own tweet.
func (s *Server) UpdateTweet(c *fiber.Ctx) error {
	tweetID, err := s.parseID(c, "tweetId")
	if err != nil {
		return nil
	}
	var req tweetRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	tweet, err := s.tweetService.UpdateTweet(c.UserContext(), tweetID, middleware.UserID(c), req.Content)
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, tweet, "Tweet updated successfully")
}

// DeleteTweet removes the caller's own tweet.
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	tweetID, err := s.parseID(c, "tweetId")
	if err != nil {
		return nil
	}

	if err := s.tweetService.DeleteTweet(c.UserContext(), tweetID, middleware.UserID(c)); err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{}, "Tweet deleted successfully")
}
