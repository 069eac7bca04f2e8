package subscription

import (
	"context"

	"go.uber.org/zap"

	"gotube/internal/store"
	"gotube/internal/toggle"
	"gotube/internal/view"
)

type SubscriptionService interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (*toggle.Result, error)
	Subscribers(ctx context.Context, channelID, viewerID string) ([]store.Document, error)
	Channels(ctx context.Context, subscriberID, viewerID string) ([]store.Document, error)
}

type subscriptionService struct {
	toggles  *toggle.Engine
	composer *view.Composer
	logger   *zap.Logger
}

func NewSubscriptionService(toggles *toggle.Engine, composer *view.Composer, logger *zap.Logger) SubscriptionService {
	return &subscriptionService{toggles: toggles, composer: composer, logger: logger}
}

func (s *subscriptionService) Toggle(ctx context.Context, subscriberID, channelID string) (*toggle.Result, error) {
	res, err := s.toggles.Toggle(ctx, subscriberID, toggle.Subscription(channelID))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("subscription toggled",
		zap.String("subscriber", subscriberID),
		zap.String("channel", channelID),
		zap.Bool("active", res.Active),
	)
	return res, nil
}

func (s *subscriptionService) Subscribers(ctx context.Context, channelID, viewerID string) ([]store.Document, error) {
	return s.composer.ChannelSubscribers(ctx, channelID, viewerID)
}

func (s *subscriptionService) Channels(ctx context.Context, subscriberID, viewerID string) ([]store.Document, error) {
	return s.composer.SubscribedChannels(ctx, subscriberID, viewerID)
}
