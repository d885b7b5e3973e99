package server

import (
	"vidtube/internal/middleware"
	"vidtube/internal/models"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) toggleLike(c *fiber.Ctx, kind models.LikeTarget, param string) error {
	targetID, err := s.parseID(c, param)
	if err != nil {
		return nil
	}

	liked, err := s.likeService.Toggle(c.UserContext(), kind, targetID, middleware.UserID(c), viewerName(c))
	if err != nil {
		return respondError(c, err)
	}

	msg := "Like removed successfully"
	if liked {
		msg = "Liked successfully"
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"isLiked": liked}, msg)
}

// ToggleVideoLike likes or unlikes a video.
func (s *Server) ToggleVideoLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeTargetVideo, "videoId")
}

// ToggleCommentLike likes or unlikes a comment.
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeTargetComment, "commentId")
}

// ToggleTweetLike likes or unlikes a tweet.
func (s *Server) ToggleTweetLike(c *fiber.Ctx) error {
	return s.toggleLike(c, models.LikeTargetTweet, "tweetId")
}

// GetLikedVideos lists the caller's liked videos, most recently liked first.
func (s *Server) GetLikedVideos(c *fiber.Ctx) error {
	page, err := s.likeService.LikedVideos(c.UserContext(), middleware.UserID(c), parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, page, "Liked videos fetched successfully")
}

// ToggleSubscription subscribes the caller to a channel or cancels the
// subscription.
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	channelID, err := s.parseID(c, "channelId")
	if err != nil {
		return nil
	}

	subscribed, err := s.subscriptionService.Toggle(c.UserContext(), middleware.UserID(c), channelID, viewerName(c))
	if err != nil {
		return respondError(c, err)
	}

	msg := "Unsubscribed successfully"
	if subscribed {
		msg = "Subscribed successfully"
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"Subscribed": subscribed}, msg)
}

// GetChannelSubscribers lists who follows a channel.
func (s *Server) GetChannelSubscribers(c *fiber.Ctx) error {
	channelID, err := s.parseID(c, "channelId")
	if err != nil {
		return nil
	}

	list, err := s.subscriptionService.Subscribers(c.UserContext(), channelID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, list, "Subscribers fetched successfully")
}

// GetSubscribedChannels lists the channels the caller follows.
func (s *Server) GetSubscribedChannels(c *fiber.Ctx) error {
	viewerID := middleware.UserID(c)
	return s.respondSubscribedChannels(c, viewerID, viewerID)
}

// GetUserSubscriptions lists the channels any user follows, flagged for the
// caller.
func (s *Server) GetUserSubscriptions(c *fiber.Ctx) error {
	subscriberID, err := s.parseID(c, "subscriberId")
	if err != nil {
		return nil
	}
	return s.respondSubscribedChannels(c, subscriberID, middleware.UserID(c))
}

func (s *Server) respondSubscribedChannels(c *fiber.Ctx, subscriberID, viewerID uint) error {
	list, err := s.subscriptionService.SubscribedChannels(c.UserContext(), subscriberID, viewerID, parsePage(c))
	if err != nil {
		return respondError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, list, "Subscribed channels fetched successfully")
}
