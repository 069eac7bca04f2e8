// Package cascade removes the records that depend on a deleted entity. The
// entity store has no foreign keys, so every step runs here, independently:
// one failing step never stops the others or undoes the primary delete.
package cascade

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/dbmysql"
	"gotube/internal/model"
	"gotube/internal/store"
)

// Deleted entity kinds
const (
	EntityVideo   = "video"
	EntityTweet   = "tweet"
	EntityComment = "comment"
	EntityUser    = "user"
)

// Step names, as recorded in the ledger
const (
	StepLikes     = "likes"
	StepComments  = "comments"
	StepPlaylists = "playlists"
	StepObject    = "object"
)

type Coordinator struct {
	store   store.Store
	objects common.ObjectStorage
	ledger  Ledger
	logger  *zap.Logger
}

func NewCoordinator(s store.Store, objects common.ObjectStorage, ledger Ledger, logger *zap.Logger) *Coordinator {
	if ledger == nil {
		ledger = NopLedger{}
	}
	return &Coordinator{store: s, objects: objects, ledger: ledger, logger: logger}
}

// VideoDeleted cleans up after a video was removed: its likes, its comments
// and their likes, its place in every playlist, and its two stored objects.
// The returned error aggregates the failed steps; each one is already logged
// and recorded.
func (c *Coordinator) VideoDeleted(ctx context.Context, video store.Document) error {
	id := video.ID()
	err := multierr.Combine(
		c.step(ctx, EntityVideo, id, StepLikes, ""),
		c.step(ctx, EntityVideo, id, StepComments, ""),
		c.step(ctx, EntityVideo, id, StepPlaylists, ""),
	)
	for _, field := range []string{model.FieldThumbnail, model.FieldVideoFile} {
		if publicID := video.String(field + "." + model.FieldPublicID); publicID != "" {
			err = multierr.Append(err, c.step(ctx, EntityVideo, id, StepObject, publicID))
		}
	}
	return err
}

func (c *Coordinator) TweetDeleted(ctx context.Context, tweetID string) error {
	return c.step(ctx, EntityTweet, tweetID, StepLikes, "")
}

func (c *Coordinator) CommentDeleted(ctx context.Context, commentID string) error {
	return c.step(ctx, EntityComment, commentID, StepLikes, "")
}

// ObjectReplaced deletes an object that an update made unreachable, such as
// an old avatar or thumbnail.
func (c *Coordinator) ObjectReplaced(ctx context.Context, entity, entityID, publicID string) error {
	if publicID == "" {
		return nil
	}
	return c.step(ctx, entity, entityID, StepObject, publicID)
}

// Retry runs a recorded step again.
func (c *Coordinator) Retry(ctx context.Context, f dbmysql.CascadeFailure) error {
	return c.run(ctx, f.Entity, f.EntityID, f.Step, f.Target)
}

func (c *Coordinator) step(ctx context.Context, entity, entityID, step, target string) error {
	err := c.run(ctx, entity, entityID, step, target)
	if err == nil {
		return nil
	}
	c.logger.Warn("cascade step failed",
		zap.String("entity", entity),
		zap.String("entityId", entityID),
		zap.String("step", step),
		zap.String("target", target),
		zap.Error(err),
	)
	failure := &dbmysql.CascadeFailure{
		Entity:    entity,
		EntityID:  entityID,
		Step:      step,
		Target:    target,
		LastError: err.Error(),
	}
	if lerr := c.ledger.Record(ctx, failure); lerr != nil {
		c.logger.Error("failed to record cascade failure",
			zap.String("entity", entity),
			zap.String("entityId", entityID),
			zap.String("step", step),
			zap.Error(lerr),
		)
	}
	return fmt.Errorf("%s %s: %s: %w", entity, entityID, step, err)
}

func (c *Coordinator) run(ctx context.Context, entity, entityID, step, target string) error {
	switch step {
	case StepLikes:
		kind, err := likeKind(entity)
		if err != nil {
			return err
		}
		t, err := model.NewLikeTarget(kind, entityID)
		if err != nil {
			return err
		}
		_, err = c.store.DeleteMany(ctx, model.Likes, t.Filter())
		return err
	case StepComments:
		return c.deleteComments(ctx, entityID)
	case StepPlaylists:
		_, err := c.store.UpdateMany(ctx, model.Playlists,
			store.Where(store.EqID(model.FieldVideos, entityID)),
			store.Update{Pull: map[string]any{model.FieldVideos: entityID}},
		)
		return err
	case StepObject:
		return c.objects.Delete(ctx, target)
	}
	return fmt.Errorf("unknown cascade step %q", step)
}

// deleteComments removes the likes of a video's comments before the comments
// themselves, so a retry can still find them.
func (c *Coordinator) deleteComments(ctx context.Context, videoID string) error {
	comments, err := c.store.Find(ctx, model.Comments, store.Query{
		Filter: store.Where(store.EqID(model.FieldVideo, videoID)),
	})
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		return nil
	}
	ids := make([]string, 0, len(comments))
	for _, cm := range comments {
		ids = append(ids, cm.ID())
	}
	if _, err := c.store.DeleteMany(ctx, model.Likes, store.Where(
		store.Eq(model.FieldTargetKind, string(model.LikeComment)),
		store.InIDs(model.FieldTarget, ids),
	)); err != nil {
		return err
	}
	_, err = c.store.DeleteMany(ctx, model.Comments, store.Where(store.EqID(model.FieldVideo, videoID)))
	return err
}

func likeKind(entity string) (model.LikeKind, error) {
	switch entity {
	case EntityVideo:
		return model.LikeVideo, nil
	case EntityTweet:
		return model.LikeTweet, nil
	case EntityComment:
		return model.LikeComment, nil
	}
	return "", fmt.Errorf("no likes for entity %q", entity)
}
