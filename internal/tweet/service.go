package tweet

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"gotube/internal/access"
	"gotube/internal/cascade"
	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/store"
	"gotube/internal/view"
)

type TweetService interface {
	Create(ctx context.Context, ownerID, content string) (store.Document, error)
	UserTweets(ctx context.Context, userID, viewerID string) ([]store.Document, error)
	Update(ctx context.Context, actorID, tweetID, content string) (store.Document, error)
	Delete(ctx context.Context, actorID, tweetID string) error
	CheckOwner(ctx context.Context, actorID, tweetID string) error
}

type tweetService struct {
	store    store.Store
	composer *view.Composer
	cascade  *cascade.Coordinator
	logger   *zap.Logger
}

func NewTweetService(s store.Store, composer *view.Composer, coord *cascade.Coordinator, logger *zap.Logger) TweetService {
	return &tweetService{store: s, composer: composer, cascade: coord, logger: logger}
}

func validContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", common.ValidationError("content is required")
	}
	return content, nil
}

func (s *tweetService) Create(ctx context.Context, ownerID, content string) (store.Document, error) {
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.Insert(ctx, model.Tweets, store.Document{
		model.FieldOwner:   ownerID,
		model.FieldContent: content,
	})
	if err != nil {
		return nil, common.StorageError("failed to create tweet", err)
	}
	return doc, nil
}

func (s *tweetService) UserTweets(ctx context.Context, userID, viewerID string) ([]store.Document, error) {
	return s.composer.UserTweets(ctx, userID, viewerID)
}

func (s *tweetService) Update(ctx context.Context, actorID, tweetID, content string) (store.Document, error) {
	if _, err := access.LoadOwned(ctx, s.store, model.Tweets, tweetID, actorID, "tweet"); err != nil {
		return nil, err
	}
	content, err := validContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, model.Tweets, tweetID, store.Update{
		Set: store.Document{model.FieldContent: content},
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError("tweet not found")
		}
		return nil, common.StorageError("failed to update tweet", err)
	}
	return access.Load(ctx, s.store, model.Tweets, tweetID, "tweet")
}

func (s *tweetService) CheckOwner(ctx context.Context, actorID, tweetID string) error {
	_, err := access.LoadOwned(ctx, s.store, model.Tweets, tweetID, actorID, "tweet")
	return err
}

func (s *tweetService) Delete(ctx context.Context, actorID, tweetID string) error {
	if _, err := access.LoadOwned(ctx, s.store, model.Tweets, tweetID, actorID, "tweet"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, model.Tweets, tweetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NotFoundError("tweet not found")
		}
		return common.StorageError("failed to delete tweet", err)
	}
	if err := s.cascade.TweetDeleted(ctx, tweetID); err != nil {
		s.logger.Warn("tweet deleted with incomplete cleanup", zap.String("tweetId", tweetID), zap.Error(err))
	}
	return nil
}
