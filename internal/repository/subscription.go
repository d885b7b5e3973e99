package repository

import (
	"context"

	"vidtube/internal/database"
	"vidtube/internal/models"
	"vidtube/internal/pagination"

	"gorm.io/gorm"
)

const channelColumns = "u.id, u.username, u.full_name, u.avatar_url, u.avatar_external_id, " + subscribersCountColumn

// SubscriptionRepository manages the subscriber/channel relation.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error)
	ListSubscribers(ctx context.Context, channelID uint, p pagination.Params) (pagination.Page[models.SubscriberItem], error)
	ListSubscribedChannels(ctx context.Context, subscriberID, viewerID uint, p pagination.Params) (pagination.Page[models.SubscribedChannelItem], error)
	DeleteByUser(ctx context.Context, userID uint) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new SubscriptionRepository
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Toggle removes the subscription if present, otherwise creates it, and
// reports whether it exists afterwards. Losing an insert race to the unique
// index is reported as a conflict.
func (r *subscriptionRepository) Toggle(ctx context.Context, subscriberID, channelID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		return false, nil
	}

	sub := models.Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	if err := r.db.WithContext(ctx).Create(&sub).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return false, models.NewConflictError("Subscription changed concurrently, please retry")
		}
		return false, models.NewInternalError(err)
	}
	return true, nil
}

// ListSubscribers pages the users subscribed to channelID, newest first.
// Each item reports whether the channel subscribes back.
func (r *subscriptionRepository) ListSubscribers(ctx context.Context, channelID uint, p pagination.Params) (pagination.Page[models.SubscriberItem], error) {
	base := func() *gorm.DB {
		return readDB(r.db).WithContext(ctx).
			Table("subscriptions s").
			Joins("JOIN users u ON u.id = s.subscriber_id").
			Where("s.channel_id = ?", channelID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return pagination.Page[models.SubscriberItem]{}, models.NewInternalError(err)
	}

	var items []models.SubscriberItem
	err := pagination.Apply(base().
		Select(channelColumns+", "+
			"EXISTS(SELECT 1 FROM subscriptions rs WHERE rs.subscriber_id = ? AND rs.channel_id = u.id) AS subscribed_to_subscriber, "+
			"s.created_at AS subscribed_at", channelID).
		Order("s.created_at DESC, s.id DESC"), p).
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.SubscriberItem]{}, models.NewInternalError(err)
	}
	return pagination.NewPage(items, total, p), nil
}

// ListSubscribedChannels pages the channels subscriberID follows, newest
// first. IsSubscribed is relative to viewerID, which is the subscriber
// when users list their own subscriptions.
func (r *subscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberID, viewerID uint, p pagination.Params) (pagination.Page[models.SubscribedChannelItem], error) {
	base := func() *gorm.DB {
		return readDB(r.db).WithContext(ctx).
			Table("subscriptions s").
			Joins("JOIN users u ON u.id = s.channel_id").
			Where("s.subscriber_id = ?", subscriberID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return pagination.Page[models.SubscribedChannelItem]{}, models.NewInternalError(err)
	}

	var items []models.SubscribedChannelItem
	err := pagination.Apply(base().
		Select(channelColumns+", "+
			"EXISTS(SELECT 1 FROM subscriptions vs WHERE vs.subscriber_id = ? AND vs.channel_id = u.id) AS is_subscribed, "+
			"s.created_at AS subscribed_at", viewerID).
		Order("s.created_at DESC, s.id DESC"), p).
		Scan(&items).Error
	if err != nil {
		return pagination.Page[models.SubscribedChannelItem]{}, models.NewInternalError(err)
	}
	return pagination.NewPage(items, total, p), nil
}

// DeleteByUser removes the user's subscriptions in both directions.
func (r *subscriptionRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("subscriber_id = ? OR channel_id = ?", userID, userID).
		Delete(&models.Subscription{}).Error
}
