package repository

import (
	"context"
	"errors"
	"time"

	"vidtube/internal/models"

	"gorm.io/gorm"
)

// PasswordResetRepository stores one-time password reset tickets.
type PasswordResetRepository interface {
	Create(ctx context.Context, ticket *models.PasswordResetTicket) error
	FindRedeemable(ctx context.Context, userID uint, otp string, now time.Time) (*models.PasswordResetTicket, error)
	Consume(ctx context.Context, id uint, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, ticket *models.PasswordResetTicket) error {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FindRedeemable returns the newest unconsumed, unexpired ticket matching
// otp, or nil when there is none.
func (r *passwordResetRepository) FindRedeemable(ctx context.Context, userID uint, otp string, now time.Time) (*models.PasswordResetTicket, error) {
	var ticket models.PasswordResetTicket
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND otp = ? AND consumed_at IS NULL AND expires_at > ?", userID, otp, now).
		Order("id DESC").
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &ticket, nil
}

// Consume marks a ticket used. It reports false when another request
// consumed it first.
func (r *passwordResetRepository) Consume(ctx context.Context, id uint, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PasswordResetTicket{}).
		Where("id = ? AND consumed_at IS NULL", id).
		Update("consumed_at", now)
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DeleteExpired removes tickets that can no longer be redeemed.
func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ? OR consumed_at IS NOT NULL", now).
		Delete(&models.PasswordResetTicket{})
	return res.RowsAffected, res.Error
}

func (r *passwordResetRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PasswordResetTicket{}).Error
}
