package dashboard

import (
	"context"

	"gotube/internal/pipeline"
	"gotube/internal/view"
)

type DashboardService interface {
	Stats(ctx context.Context, ownerID string) (*view.ChannelStats, error)
	Videos(ctx context.Context, ownerID string, page, limit int) (*pipeline.Page, error)
}

type dashboardService struct {
	composer *view.Composer
}

func NewDashboardService(composer *view.Composer) DashboardService {
	return &dashboardService{composer: composer}
}

func (s *dashboardService) Stats(ctx context.Context, ownerID string) (*view.ChannelStats, error) {
	return s.composer.ChannelStats(ctx, ownerID)
}

func (s *dashboardService) Videos(ctx context.Context, ownerID string, page, limit int) (*pipeline.Page, error) {
	return s.composer.ChannelVideos(ctx, ownerID, page, limit)
}
