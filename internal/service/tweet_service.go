package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/pagination"
	"vidtube/internal/repository"
	"vidtube/internal/validation"
)

type TweetService struct {
	tweetRepo repository.TweetRepository
	userRepo  repository.UserRepository
	likeRepo  repository.LikeRepository
}

func NewTweetService(tweetRepo repository.TweetRepository, userRepo repository.UserRepository, likeRepo repository.LikeRepository) *TweetService {
	return &TweetService{tweetRepo: tweetRepo, userRepo: userRepo, likeRepo: likeRepo}
}

func (s *TweetService) CreateTweet(ctx context.Context, userID uint, content string) (*models.Tweet, error) {
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tweet := &models.Tweet{Content: strings.TrimSpace(content), OwnerID: userID}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) ListUserTweets(ctx context.Context, ownerID, viewerID uint, p pagination.Params) (pagination.Page[models.TweetView], error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return pagination.Page[models.TweetView]{}, err
	}
	return s.tweetRepo.ListByOwner(ctx, ownerID, viewerID, p)
}

func (s *TweetService) UpdateTweet(ctx context.Context, tweetID, userID uint, content string) (*models.Tweet, error) {
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(tweet.OwnerID, userID, "update this tweet"); err != nil {
		return nil, err
	}
	tweet.Content = strings.TrimSpace(content)
	if err := s.tweetRepo.UpdateContent(ctx, tweetID, tweet.Content); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) DeleteTweet(ctx context.Context, tweetID, userID uint) error {
	tweet, err := s.tweetRepo.GetByID(ctx, tweetID)
	if err != nil {
		return err
	}
	if err := requireOwner(tweet.OwnerID, userID, "delete this tweet"); err != nil {
		return err
	}
	if err := s.tweetRepo.Delete(ctx, tweetID); err != nil {
		return err
	}
	return runCascade(ctx, "tweet", tweetID, []cascadeStep{
		{"tweet_likes", func(ctx context.Context) error {
			return s.likeRepo.DeleteByTarget(ctx, models.LikeTargetTweet, tweetID)
		}},
	})
}
