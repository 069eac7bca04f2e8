package like

import (
	"context"

	"go.uber.org/zap"

	"gotube/internal/access"
	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/store"
	"gotube/internal/toggle"
	"gotube/internal/view"
)

type LikeService interface {
	Toggle(ctx context.Context, actorID string, kind model.LikeKind, targetID string) (*toggle.Result, error)
	LikedVideos(ctx context.Context, viewerID string) ([]store.Document, error)
}

type likeService struct {
	store    store.Store
	toggles  *toggle.Engine
	composer *view.Composer
	logger   *zap.Logger
}

func NewLikeService(s store.Store, toggles *toggle.Engine, composer *view.Composer, logger *zap.Logger) LikeService {
	return &likeService{store: s, toggles: toggles, composer: composer, logger: logger}
}

// Toggle flips the actor's like on a video, comment or tweet. A video the
// actor cannot read is reported as missing.
func (s *likeService) Toggle(ctx context.Context, actorID string, kind model.LikeKind, targetID string) (*toggle.Result, error) {
	target, err := model.NewLikeTarget(kind, targetID)
	if err != nil {
		return nil, common.ValidationError("invalid like target", string(kind))
	}
	if kind == model.LikeVideo {
		video, err := access.Load(ctx, s.store, model.Videos, targetID, "video")
		if err != nil {
			return nil, err
		}
		if !access.CanRead(video, actorID) {
			return nil, common.NotFoundError("video not found")
		}
	}
	res, err := s.toggles.Toggle(ctx, actorID, toggle.Like(target))
	if err != nil {
		return nil, err
	}
	s.logger.Debug("like toggled",
		zap.String("actor", actorID),
		zap.String("kind", string(kind)),
		zap.String("target", targetID),
		zap.Bool("active", res.Active),
	)
	return res, nil
}

func (s *likeService) LikedVideos(ctx context.Context, viewerID string) ([]store.Document, error) {
	return s.composer.LikedVideos(ctx, viewerID)
}
