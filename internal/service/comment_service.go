package service

import (
	"context"
	"strings"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/pagination"
	"vidtube/internal/repository"
	"vidtube/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	likeRepo    repository.LikeRepository
	events      EventPublisher
}

type AddCommentInput struct {
	VideoID         uint
	UserID          uint
	Username        string
	Content         string
	ParentCommentID *uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	videoRepo repository.VideoRepository,
	likeRepo repository.LikeRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		likeRepo:    likeRepo,
		events:      events,
	}
}

// publishedVideo returns NotFound for drafts so they stay invisible.
func (s *CommentService) publishedVideo(ctx context.Context, videoID uint) (*models.Video, error) {
	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished {
		return nil, models.NewNotFoundError("Video", videoID)
	}
	return video, nil
}

func (s *CommentService) ListVideoComments(ctx context.Context, videoID, viewerID uint, p pagination.Params) (pagination.Page[models.CommentView], error) {
	if _, err := s.publishedVideo(ctx, videoID); err != nil {
		return pagination.Page[models.CommentView]{}, err
	}
	return s.commentRepo.ListByVideo(ctx, videoID, viewerID, p)
}

func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.CommentView, error) {
	if err := validation.ValidateContent(in.Content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	video, err := s.publishedVideo(ctx, in.VideoID)
	if err != nil {
		return nil, err
	}

	if in.ParentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentCommentID)
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewValidationError("Parent comment does not exist")
		}
		if err != nil {
			return nil, err
		}
		if parent.VideoID != in.VideoID {
			return nil, models.NewValidationError("Parent comment belongs to a different video")
		}
	}

	comment := &models.Comment{
		Content:         strings.TrimSpace(in.Content),
		VideoID:         in.VideoID,
		OwnerID:         in.UserID,
		ParentCommentID: in.ParentCommentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, s.events, video.OwnerID, notifications.Event{
		Type:          notifications.EventCommentAdded,
		ActorID:       in.UserID,
		ActorUsername: in.Username,
		VideoID:       video.ID,
		CommentID:     comment.ID,
	})

	return s.commentRepo.GetView(ctx, comment.ID, in.UserID)
}

func (s *CommentService) UpdateComment(ctx context.Context, commentID, userID uint, content string) (*models.CommentView, error) {
	if err := validation.ValidateContent(content); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(comment.OwnerID, userID, "update this comment"); err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateContent(ctx, commentID, strings.TrimSpace(content)); err != nil {
		return nil, err
	}
	return s.commentRepo.GetView(ctx, commentID, userID)
}

func (s *CommentService) DeleteComment(ctx context.Context, commentID, userID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if err := requireOwner(comment.OwnerID, userID, "delete this comment"); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	return runCascade(ctx, "comment", commentID, []cascadeStep{
		{"comment_likes", func(ctx context.Context) error {
			return s.likeRepo.DeleteByTarget(ctx, models.LikeTargetComment, commentID)
		}},
	})
}
