package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/repository"
	"vidtube/internal/validation"
)

// ChannelService serves the public channel page and the owner dashboard.
type ChannelService struct {
	userRepo  repository.UserRepository
	videoRepo repository.VideoRepository
}

func NewChannelService(userRepo repository.UserRepository, videoRepo repository.VideoRepository) *ChannelService {
	return &ChannelService{userRepo: userRepo, videoRepo: videoRepo}
}

func (s *ChannelService) GetAbout(ctx context.Context, username string) (*models.ChannelAbout, error) {
	username = validation.NormalizeUsername(username)
	if username == "" {
		return nil, models.NewValidationError("Username is required")
	}
	return s.userRepo.GetChannelAbout(ctx, username)
}

// Stats returns the owner's dashboard totals, drafts included.
func (s *ChannelService) Stats(ctx context.Context, ownerID uint) (*models.ChannelStats, error) {
	return s.videoRepo.ChannelStats(ctx, ownerID)
}

// DashboardVideos lists every video the owner uploaded, drafts included.
func (s *ChannelService) DashboardVideos(ctx context.Context, ownerID uint) ([]models.VideoSummary, error) {
	return s.videoRepo.ListAllByOwner(ctx, ownerID)
}
