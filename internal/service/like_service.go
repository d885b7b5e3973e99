package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/observability"
	"vidtube/internal/pagination"
	"vidtube/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
	events      EventPublisher
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	tweetRepo repository.TweetRepository,
	events EventPublisher,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		videoRepo:   videoRepo,
		commentRepo: commentRepo,
		tweetRepo:   tweetRepo,
		events:      events,
	}
}

// targetOwner checks the like target exists and returns its owner. Draft
// videos count as missing.
func (s *LikeService) targetOwner(ctx context.Context, kind models.LikeTarget, targetID uint) (uint, error) {
	switch kind {
	case models.LikeTargetVideo:
		video, err := s.videoRepo.GetByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if !video.IsPublished {
			return 0, models.NewNotFoundError("Video", targetID)
		}
		return video.OwnerID, nil
	case models.LikeTargetComment:
		comment, err := s.commentRepo.GetByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		return comment.OwnerID, nil
	case models.LikeTargetTweet:
		tweet, err := s.tweetRepo.GetByID(ctx, targetID)
		if err != nil {
			return 0, err
		}
		return tweet.OwnerID, nil
	}
	return 0, models.NewValidationError("Unknown like target")
}

// Toggle flips userID's like on the target and reports whether it is now
// liked.
func (s *LikeService) Toggle(ctx context.Context, kind models.LikeTarget, targetID, userID uint, username string) (bool, error) {
	ownerID, err := s.targetOwner(ctx, kind, targetID)
	if err != nil {
		return false, err
	}

	liked, err := s.likeRepo.Toggle(ctx, kind, targetID, userID)
	if err != nil {
		return false, err
	}
	observability.ToggleTotal.WithLabelValues(string(kind)+"_like", observability.ToggleState(liked)).Inc()

	if liked && kind == models.LikeTargetVideo {
		publish(ctx, s.events, ownerID, notifications.Event{
			Type:          notifications.EventVideoLiked,
			ActorID:       userID,
			ActorUsername: username,
			VideoID:       targetID,
		})
	}
	return liked, nil
}

func (s *LikeService) LikedVideos(ctx context.Context, userID uint, p pagination.Params) (pagination.Page[models.LikedVideo], error) {
	return s.likeRepo.ListLikedVideos(ctx, userID, p)
}
