package service

import (
	"context"

	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/observability"
	"vidtube/internal/pagination"
	"vidtube/internal/repository"
)

type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	events   EventPublisher
}

// SubscriberList is a channel's subscribers with the overall total.
type SubscriberList struct {
	TotalSubscribers int64                                  `json:"totalSubscribers"`
	Subscribers      pagination.Page[models.SubscriberItem] `json:"subscribers"`
}

// SubscribedChannelList is the channels a user follows with the overall
// total.
type SubscribedChannelList struct {
	TotalChannels      int64                                         `json:"totalChannels"`
	SubscribedChannels pagination.Page[models.SubscribedChannelItem] `json:"subscribedChannels"`
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository, events EventPublisher) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo, events: events}
}

// Toggle subscribes subscriberID to channelID, or unsubscribes when already
// subscribed, and reports the new state.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberID, channelID uint, username string) (bool, error) {
	if subscriberID == channelID {
		return false, models.NewValidationError("You cannot subscribe to your own channel")
	}
	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		return false, err
	}

	subscribed, err := s.subRepo.Toggle(ctx, subscriberID, channelID)
	if err != nil {
		return false, err
	}
	observability.ToggleTotal.WithLabelValues("subscription", observability.ToggleState(subscribed)).Inc()

	if subscribed {
		publish(ctx, s.events, channelID, notifications.Event{
			Type:          notifications.EventSubscribed,
			ActorID:       subscriberID,
			ActorUsername: username,
		})
	}
	return subscribed, nil
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channelID uint, p pagination.Params) (*SubscriberList, error) {
	if _, err := s.userRepo.GetByID(ctx, channelID); err != nil {
		return nil, err
	}
	page, err := s.subRepo.ListSubscribers(ctx, channelID, p)
	if err != nil {
		return nil, err
	}
	return &SubscriberList{TotalSubscribers: page.TotalDocs, Subscribers: page}, nil
}

// SubscribedChannels lists the channels subscriberID follows. IsSubscribed
// on each item is relative to viewerID.
func (s *SubscriptionService) SubscribedChannels(ctx context.Context, subscriberID, viewerID uint, p pagination.Params) (*SubscribedChannelList, error) {
	if subscriberID != viewerID {
		if _, err := s.userRepo.GetByID(ctx, subscriberID); err != nil {
			return nil, err
		}
	}
	page, err := s.subRepo.ListSubscribedChannels(ctx, subscriberID, viewerID, p)
	if err != nil {
		return nil, err
	}
	return &SubscribedChannelList{TotalChannels: page.TotalDocs, SubscribedChannels: page}, nil
}
