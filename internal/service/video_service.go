package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/observability"
	"vidtube/internal/pagination"
	"vidtube/internal/repository"
	"vidtube/internal/storage"
	"vidtube/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

const maxDescriptionLength = 5000

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return fmt.Errorf("description must not exceed %d characters", maxDescriptionLength)
	}
	return nil
}

type VideoService struct {
	videoRepo    repository.VideoRepository
	userRepo     repository.UserRepository
	likeRepo     repository.LikeRepository
	commentRepo  repository.CommentRepository
	playlistRepo repository.PlaylistRepository
	store        storage.ObjectStore
}

type PublishVideoInput struct {
	OwnerID     uint
	Title       string
	Description string
	VideoFile   models.MediaAsset
	Thumbnail   models.MediaAsset
	Duration    float64
	// Draft keeps the video unpublished.
	Draft bool
}

type UpdateVideoInput struct {
	UserID      uint
	VideoID     uint
	Title       *string
	Description *string
	Thumbnail   *models.MediaAsset
}

type ListVideosInput struct {
	Query    string
	SortBy   string
	SortType string
	Page     pagination.Params
}

func NewVideoService(
	videoRepo repository.VideoRepository,
	userRepo repository.UserRepository,
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	playlistRepo repository.PlaylistRepository,
	store storage.ObjectStore,
) *VideoService {
	if store == nil {
		store = storage.NoopStore{}
	}
	return &VideoService{
		videoRepo:    videoRepo,
		userRepo:     userRepo,
		likeRepo:     likeRepo,
		commentRepo:  commentRepo,
		playlistRepo: playlistRepo,
		store:        store,
	}
}

// GetVideoDetail records a view and returns the detail page for viewerID
// (0 for anonymous). Only published videos are visible. Repeat views by the
// same viewer count again but leave a single watch history entry.
func (s *VideoService) GetVideoDetail(ctx context.Context, videoID, viewerID uint) (_ *models.VideoDetail, err error) {
	ctx, end := observability.StartSpan(ctx, "video.detail",
		attribute.Int64("video.id", int64(videoID)),
		attribute.Bool("viewer.anonymous", viewerID == 0))
	defer func() { end(err) }()

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished {
		return nil, models.NewNotFoundError("Video", videoID)
	}

	// The increment must land even if the client has gone away.
	if err := s.videoRepo.IncrementViews(context.WithoutCancel(ctx), videoID); err != nil {
		return nil, err
	}
	observability.VideoViewsTotal.Inc()

	if viewerID != 0 {
		if err := s.userRepo.AddToWatchHistory(ctx, viewerID, videoID); err != nil {
			return nil, err
		}
	}

	return s.videoRepo.GetDetail(ctx, videoID, viewerID)
}

func (s *VideoService) ListVideos(ctx context.Context, in ListVideosInput) (pagination.Page[models.VideoSummary], error) {
	return s.videoRepo.List(ctx, repository.VideoQuery{
		Query:    in.Query,
		SortBy:   in.SortBy,
		SortType: in.SortType,
		Page:     in.Page,
	})
}

// ListChannelVideos lists one channel's videos. Owners also see their drafts.
func (s *VideoService) ListChannelVideos(ctx context.Context, username string, viewerID uint, in ListVideosInput) (pagination.Page[models.VideoSummary], error) {
	owner, err := s.userRepo.GetByUsername(ctx, validation.NormalizeUsername(username))
	if err != nil {
		return pagination.Page[models.VideoSummary]{}, err
	}
	if owner == nil {
		return pagination.Page[models.VideoSummary]{}, models.NewNotFoundMessage("Channel does not exist")
	}
	return s.videoRepo.List(ctx, repository.VideoQuery{
		OwnerID:            owner.ID,
		Query:              in.Query,
		SortBy:             in.SortBy,
		SortType:           in.SortType,
		IncludeUnpublished: viewerID == owner.ID,
		Page:               in.Page,
	})
}

func (s *VideoService) SearchVideos(ctx context.Context, query string, p pagination.Params) (pagination.Page[models.VideoSummary], error) {
	if strings.TrimSpace(query) == "" {
		return pagination.Page[models.VideoSummary]{}, models.NewValidationError("Search query is required")
	}
	return s.videoRepo.Search(ctx, query, p)
}

func (s *VideoService) PublishVideo(ctx context.Context, in PublishVideoInput) (*models.Video, error) {
	var errs validation.Errors
	errs.Add(validation.Required("title", in.Title, validation.MaxTitleLength))
	errs.Add(validateDescription(in.Description))
	errs.Add(validation.Required("videoFile.url", in.VideoFile.URL, 0))
	errs.Add(validation.ValidateDuration(in.Duration))
	if !errs.Empty() {
		return nil, validationFailed(errs)
	}

	video := &models.Video{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		VideoFile:   in.VideoFile,
		Thumbnail:   in.Thumbnail,
		Duration:    in.Duration,
		IsPublished: !in.Draft,
		OwnerID:     in.OwnerID,
	}
	if err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// ownedVideo loads a video and checks the requester owns it.
func (s *VideoService) ownedVideo(ctx context.Context, videoID, userID uint, action string) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(video.OwnerID, userID, action); err != nil {
		return nil, err
	}
	return video, nil
}

func (s *VideoService) UpdateVideo(ctx context.Context, in UpdateVideoInput) (*models.Video, error) {
	var errs validation.Errors
	if in.Title != nil {
		errs.Add(validation.Required("title", *in.Title, validation.MaxTitleLength))
	}
	if in.Description != nil {
		errs.Add(validateDescription(*in.Description))
	}
	if in.Thumbnail != nil {
		errs.Add(validation.Required("thumbnail.url", in.Thumbnail.URL, 0))
	}
	if !errs.Empty() {
		return nil, validationFailed(errs)
	}

	video, err := s.ownedVideo(ctx, in.VideoID, in.UserID, "update this video")
	if err != nil {
		return nil, err
	}

	previousThumbnail := video.Thumbnail
	if in.Title != nil {
		video.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		video.Description = strings.TrimSpace(*in.Description)
	}
	if in.Thumbnail != nil {
		video.Thumbnail = *in.Thumbnail
	}
	if err := s.videoRepo.Update(ctx, video); err != nil {
		return nil, err
	}

	if in.Thumbnail != nil && previousThumbnail.ExternalID != video.Thumbnail.ExternalID {
		s.deleteAsset(ctx, previousThumbnail)
	}
	return video, nil
}

// TogglePublish flips the publish flag and returns the new state.
func (s *VideoService) TogglePublish(ctx context.Context, videoID, userID uint) (bool, error) {
	video, err := s.ownedVideo(ctx, videoID, userID, "change this video")
	if err != nil {
		return false, err
	}
	published := !video.IsPublished
	if err := s.videoRepo.SetPublished(ctx, videoID, published); err != nil {
		return false, err
	}
	return published, nil
}

// DeleteVideo removes an owned video and then runs its cleanup cascade.
func (s *VideoService) DeleteVideo(ctx context.Context, videoID, userID uint) error {
	video, err := s.ownedVideo(ctx, videoID, userID, "delete this video")
	if err != nil {
		return err
	}
	return s.purgeVideo(ctx, video)
}

// purgeVideo deletes the video row, then every dependent record and remote
// asset. Cleanup steps are compensating: they all run even if one fails.
func (s *VideoService) purgeVideo(ctx context.Context, video *models.Video) error {
	if err := s.videoRepo.Delete(ctx, video.ID); err != nil {
		return err
	}

	id := video.ID
	return runCascade(ctx, "video", id, []cascadeStep{
		{"video_likes", func(ctx context.Context) error {
			return s.likeRepo.DeleteByTarget(ctx, models.LikeTargetVideo, id)
		}},
		{"comment_likes", func(ctx context.Context) error { return s.likeRepo.DeleteOnVideoComments(ctx, id) }},
		{"comments", func(ctx context.Context) error { return s.commentRepo.DeleteByVideo(ctx, id) }},
		{"playlist_entries", func(ctx context.Context) error { return s.playlistRepo.RemoveVideoEverywhere(ctx, id) }},
		{"watch_history", func(ctx context.Context) error { return s.userRepo.DeleteWatchHistoryByVideo(ctx, id) }},
		{"video_file", func(ctx context.Context) error { return s.store.Delete(ctx, video.VideoFile.ExternalID) }},
		{"thumbnail", func(ctx context.Context) error { return s.store.Delete(ctx, video.Thumbnail.ExternalID) }},
	})
}

// deleteAsset removes a replaced remote object. Failures leave an orphan in
// the bucket and are only logged.
func (s *VideoService) deleteAsset(ctx context.Context, asset models.MediaAsset) {
	if err := s.store.Delete(context.WithoutCancel(ctx), asset.ExternalID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete replaced asset",
			"external_id", asset.ExternalID, "error", err)
	}
}
