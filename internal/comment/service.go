package comment

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"gotube/internal/access"
	"gotube/internal/cascade"
	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/pipeline"
	"gotube/internal/store"
	"gotube/internal/view"
)

type CommentService interface {
	List(ctx context.Context, videoID, viewerID string, page, limit int) (*pipeline.Page, error)
	Add(ctx context.Context, actorID, videoID, content string) (store.Document, error)
	Update(ctx context.Context, actorID, commentID, content string) (store.Document, error)
	Delete(ctx context.Context, actorID, commentID string) error
	CheckOwner(ctx context.Context, actorID, commentID string) error
}

type commentService struct {
	store    store.Store
	composer *view.Composer
	cascade  *cascade.Coordinator
	logger   *zap.Logger
}

func NewCommentService(s store.Store, composer *view.Composer, coord *cascade.Coordinator, logger *zap.Logger) CommentService {
	return &commentService{store: s, composer: composer, cascade: coord, logger: logger}
}

func (s *commentService) List(ctx context.Context, videoID, viewerID string, page, limit int) (*pipeline.Page, error) {
	return s.composer.VideoComments(ctx, videoID, viewerID, page, limit)
}

// Add comments on a video the actor can read.
func (s *commentService) Add(ctx context.Context, actorID, videoID, content string) (store.Document, error) {
	video, err := access.Load(ctx, s.store, model.Videos, videoID, "video")
	if err != nil {
		return nil, err
	}
	if !access.CanRead(video, actorID) {
		return nil, common.NotFoundError("video not found")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.ValidationError("content is required")
	}
	doc, err := s.store.Insert(ctx, model.Comments, store.Document{
		model.FieldOwner:   actorID,
		model.FieldVideo:   videoID,
		model.FieldContent: content,
	})
	if err != nil {
		return nil, common.StorageError("failed to add comment", err)
	}
	return doc, nil
}

func (s *commentService) CheckOwner(ctx context.Context, actorID, commentID string) error {
	_, err := access.LoadOwned(ctx, s.store, model.Comments, commentID, actorID, "comment")
	return err
}

func (s *commentService) Update(ctx context.Context, actorID, commentID, content string) (store.Document, error) {
	if _, err := access.LoadOwned(ctx, s.store, model.Comments, commentID, actorID, "comment"); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, common.ValidationError("content is required")
	}
	if err := s.store.Update(ctx, model.Comments, commentID, store.Update{
		Set: store.Document{model.FieldContent: content},
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError("comment not found")
		}
		return nil, common.StorageError("failed to update comment", err)
	}
	return access.Load(ctx, s.store, model.Comments, commentID, "comment")
}

func (s *commentService) Delete(ctx context.Context, actorID, commentID string) error {
	if _, err := access.LoadOwned(ctx, s.store, model.Comments, commentID, actorID, "comment"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, model.Comments, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NotFoundError("comment not found")
		}
		return common.StorageError("failed to delete comment", err)
	}
	if err := s.cascade.CommentDeleted(ctx, commentID); err != nil {
		s.logger.Warn("comment deleted with incomplete cleanup", zap.String("commentId", commentID), zap.Error(err))
	}
	return nil
}
