package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/pagination"
	"vidtube/internal/repository"
	"vidtube/internal/validation"
)

const defaultPlaylistDescription = "No description provided"

type PlaylistService struct {
	playlistRepo repository.PlaylistRepository
	videoRepo    repository.VideoRepository
	userRepo     repository.UserRepository
}

type PlaylistInput struct {
	Name        *string
	Description *string
}

func NewPlaylistService(playlistRepo repository.PlaylistRepository, videoRepo repository.VideoRepository, userRepo repository.UserRepository) *PlaylistService {
	return &PlaylistService{playlistRepo: playlistRepo, videoRepo: videoRepo, userRepo: userRepo}
}

func (s *PlaylistService) CreatePlaylist(ctx context.Context, userID uint, name, description string) (*models.Playlist, error) {
	if err := validation.Required("name", name, validation.MaxNameLength); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = defaultPlaylistDescription
	}
	playlist := &models.Playlist{
		Name:        strings.TrimSpace(name),
		Description: description,
		OwnerID:     userID,
	}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

// GetPlaylist returns the playlist with its published videos in add order.
func (s *PlaylistService) GetPlaylist(ctx context.Context, playlistID uint) (*models.PlaylistDetail, error) {
	view, err := s.playlistRepo.GetView(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	videos, err := s.playlistRepo.ListVideos(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}
	return &models.PlaylistDetail{PlaylistView: *view, Videos: videos}, nil
}

func (s *PlaylistService) ListUserPlaylists(ctx context.Context, ownerID uint, p pagination.Params) (pagination.Page[models.PlaylistView], error) {
	if _, err := s.userRepo.GetByID(ctx, ownerID); err != nil {
		return pagination.Page[models.PlaylistView]{}, err
	}
	return s.playlistRepo.ListByOwner(ctx, ownerID, p)
}

func (s *PlaylistService) UpdatePlaylist(ctx context.Context, playlistID, userID uint, in PlaylistInput) (*models.Playlist, error) {
	if in.Name == nil && in.Description == nil {
		return nil, models.NewValidationError("Name or description is required")
	}
	if in.Name != nil {
		if err := validation.Required("name", *in.Name, validation.MaxNameLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}

	playlist, err := s.ownedPlaylist(ctx, playlistID, userID, "update this playlist")
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		playlist.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		playlist.Description = strings.TrimSpace(*in.Description)
	}
	if err := s.playlistRepo.Update(ctx, playlist); err != nil {
		return nil, err
	}
	return playlist, nil
}

func (s *PlaylistService) DeletePlaylist(ctx context.Context, playlistID, userID uint) error {
	if _, err := s.ownedPlaylist(ctx, playlistID, userID, "delete this playlist"); err != nil {
		return err
	}
	return s.playlistRepo.Delete(ctx, playlistID)
}

// AddVideo appends a video to an owned playlist. Adding a member twice is a
// no-op.
func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID, userID uint) (*models.PlaylistDetail, error) {
	if err := s.checkMembershipChange(ctx, playlistID, videoID, userID, "add videos to this playlist", true); err != nil {
		return nil, err
	}
	if err := s.playlistRepo.AddVideo(ctx, playlistID, videoID); err != nil {
		return nil, err
	}
	return s.GetPlaylist(ctx, playlistID)
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID, userID uint) (*models.PlaylistDetail, error) {
	if err := s.checkMembershipChange(ctx, playlistID, videoID, userID, "remove videos from this playlist", false); err != nil {
		return nil, err
	}
	if err := s.playlistRepo.RemoveVideo(ctx, playlistID, videoID); err != nil {
		return nil, err
	}
	return s.GetPlaylist(ctx, playlistID)
}

func (s *PlaylistService) ownedPlaylist(ctx context.Context, playlistID, userID uint, action string) (*models.Playlist, error) {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(playlist.OwnerID, userID, action); err != nil {
		return nil, err
	}
	return playlist, nil
}

// checkMembershipChange resolves the playlist, then the video, then ownership.
// When adding, another user's draft is reported as missing. Removal skips that
// check so a video unpublished after it was added can still be taken out.
func (s *PlaylistService) checkMembershipChange(ctx context.Context, playlistID, videoID, userID uint, action string, adding bool) error {
	playlist, err := s.playlistRepo.GetByID(ctx, playlistID)
	if err != nil {
		return err
	}
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if adding && !video.IsPublished && video.OwnerID != userID {
		return models.NewNotFoundError("Video", videoID)
	}
	return requireOwner(playlist.OwnerID, userID, action)
}
