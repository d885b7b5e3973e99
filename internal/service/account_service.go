package service

import (
	"context"
	"fmt"

	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
)

// AccountService removes a user and everything they own.
type AccountService struct {
	users     repository.UserRepository
	videoRepo repository.VideoRepository
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	subs      repository.SubscriptionRepository
	tweets    repository.TweetRepository
	playlists repository.PlaylistRepository
	resets    repository.PasswordResetRepository
	videos    *VideoService
	store     storage.ObjectStore
}

type AccountRepositories struct {
	Users         repository.UserRepository
	Videos        repository.VideoRepository
	Comments      repository.CommentRepository
	Likes         repository.LikeRepository
	Subscriptions repository.SubscriptionRepository
	Tweets        repository.TweetRepository
	Playlists     repository.PlaylistRepository
	Resets        repository.PasswordResetRepository
}

func NewAccountService(repos AccountRepositories, videos *VideoService, store storage.ObjectStore) *AccountService {
	if store == nil {
		store = storage.NoopStore{}
	}
	return &AccountService{
		users:     repos.Users,
		videoRepo: repos.Videos,
		comments:  repos.Comments,
		likes:     repos.Likes,
		subs:      repos.Subscriptions,
		tweets:    repos.Tweets,
		playlists: repos.Playlists,
		resets:    repos.Resets,
		videos:    videos,
		store:     store,
	}
}

// DeleteAccount removes the user row and then cleans up the user's videos,
// comments, likes, tweets, playlists, subscriptions, history, reset tickets
// and profile images. Every step runs even after a failure.
func (s *AccountService) DeleteAccount(ctx context.Context, userID uint) error {
	user, err := s.users.GetAuthByID(ctx, userID)
	if err != nil {
		return err
	}
	owned, err := s.videoRepo.ListByOwner(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	steps := make([]cascadeStep, 0, len(owned)+12)
	for i := range owned {
		video := owned[i]
		steps = append(steps, cascadeStep{
			name: fmt.Sprintf("video_%d", video.ID),
			run: func(ctx context.Context) error {
				err := s.videos.purgeVideo(ctx, &video)
				if models.IsCode(err, models.CodeNotFound) {
					return nil
				}
				return err
			},
		})
	}

	steps = append(steps,
		cascadeStep{"comment_likes", func(ctx context.Context) error {
			return s.likes.DeleteOnOwnedTargets(ctx, models.LikeTargetComment, userID)
		}},
		cascadeStep{"comments", func(ctx context.Context) error { return s.comments.DeleteByOwner(ctx, userID) }},
		cascadeStep{"tweet_likes", func(ctx context.Context) error {
			return s.likes.DeleteOnOwnedTargets(ctx, models.LikeTargetTweet, userID)
		}},
		cascadeStep{"tweets", func(ctx context.Context) error { return s.tweets.DeleteByOwner(ctx, userID) }},
		cascadeStep{"likes_given", func(ctx context.Context) error { return s.likes.DeleteByUser(ctx, userID) }},
		cascadeStep{"playlists", func(ctx context.Context) error { return s.playlists.DeleteByOwner(ctx, userID) }},
		cascadeStep{"subscriptions", func(ctx context.Context) error { return s.subs.DeleteByUser(ctx, userID) }},
		cascadeStep{"watch_history", func(ctx context.Context) error { return s.users.DeleteWatchHistoryByUser(ctx, userID) }},
		cascadeStep{"reset_tickets", func(ctx context.Context) error { return s.resets.DeleteByUser(ctx, userID) }},
		cascadeStep{"avatar", func(ctx context.Context) error { return s.store.Delete(ctx, user.Avatar.ExternalID) }},
		cascadeStep{"cover_image", func(ctx context.Context) error { return s.store.Delete(ctx, user.CoverImage.ExternalID) }},
	)

	return runCascade(ctx, "user", userID, steps)
}
