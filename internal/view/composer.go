// Package view renders the read-optimized, viewer-relative projections of the
// entity store. Each view is a pipeline built by a pure function in
// pipelines.go and run by the pipeline executor; the viewer is always passed
// explicitly, and "" means anonymous.
package view

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gotube/internal/access"
	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/pipeline"
	"gotube/internal/store"
)

type Composer struct {
	exec   *pipeline.Executor
	store  store.Store
	logger *zap.Logger
}

func NewComposer(exec *pipeline.Executor, s store.Store, logger *zap.Logger) *Composer {
	return &Composer{exec: exec, store: s, logger: logger}
}

type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
}

// ChannelStats aggregates a channel's subscribers, videos, views and likes.
// The subscriber count and the video fold touch disjoint collections and run
// concurrently.
func (c *Composer) ChannelStats(ctx context.Context, ownerID string) (*ChannelStats, error) {
	stats := &ChannelStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := c.exec.Count(gctx, model.Subscriptions, []pipeline.Stage{
			pipeline.Match(store.EqID(model.FieldChannel, ownerID)),
		})
		if err != nil {
			return err
		}
		stats.TotalSubscribers = n
		return nil
	})

	var videos []store.Document
	g.Go(func() error {
		var err error
		videos, err = c.exec.Run(gctx, model.Videos, channelStatsVideos(ownerID))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.TotalVideos = int64(len(videos))
	for _, v := range videos {
		stats.TotalViews += v.Int(model.FieldViews)
		stats.TotalLikes += v.Int(fieldLikesCount)
	}
	return stats, nil
}

// ChannelVideos lists every video of the owner, newest first, private ones included.
func (c *Composer) ChannelVideos(ctx context.Context, ownerID string, page, limit int) (*pipeline.Page, error) {
	return c.exec.Paginate(ctx, model.Videos, channelVideos(ownerID), page, limit)
}

type FeedQuery struct {
	Query    string
	UserID   string
	SortBy   string
	SortType string
	Page     int
	Limit    int
}

var feedSortFields = map[string]bool{
	model.FieldCreatedAt: true,
	model.FieldViews:     true,
	model.FieldDuration:  true,
	model.FieldTitle:     true,
}

// sortKeys picks the feed order: the requested field, else search relevance
// when there is a query, else newest first. Direction defaults to desc.
func (q FeedQuery) sortKeys() ([]pipeline.SortKey, error) {
	desc := true
	switch q.SortType {
	case "", "desc":
	case "asc":
		desc = false
	default:
		return nil, common.ValidationError("sortType must be asc or desc")
	}

	field := q.SortBy
	switch {
	case field != "":
		if !feedSortFields[field] {
			return nil, common.ValidationError(fmt.Sprintf("cannot sort by %q", field))
		}
	case q.Query != "":
		field = store.FieldScore
	default:
		field = model.FieldCreatedAt
	}
	return []pipeline.SortKey{{Field: field, Desc: desc}}, nil
}

// VideoFeed searches and lists public videos.
func (c *Composer) VideoFeed(ctx context.Context, q FeedQuery) (*pipeline.Page, error) {
	keys, err := q.sortKeys()
	if err != nil {
		return nil, err
	}
	return c.exec.Paginate(ctx, model.Videos, videoFeed(q, keys), q.Page, q.Limit)
}

// VideoDetail returns one video with its owner's channel and like counters,
// relative to the viewer. A successful fetch counts a view and records the
// video in the viewer's watch history; the returned view count is the one
// read before this fetch's increment.
func (c *Composer) VideoDetail(ctx context.Context, videoID, viewerID string) (store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Videos, videoDetail(videoID, viewerID))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NotFoundError("video not found")
	}

	if err := c.store.Update(ctx, model.Videos, videoID, store.Update{
		Inc: map[string]int64{model.FieldViews: 1},
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError("video not found")
		}
		return nil, common.StorageError("failed to count view", err)
	}
	if viewerID != "" {
		if err := c.store.Update(ctx, model.Users, viewerID, store.Update{
			AddToSet: map[string]any{model.FieldWatchHistory: videoID},
		}); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return nil, common.StorageError("failed to update watch history", err)
			}
			c.logger.Warn("viewer missing while recording watch history", zap.String("viewer", viewerID))
		}
	}
	return docs[0], nil
}

// LikedVideos lists the videos the viewer liked, most recent like first.
// Likes whose video is gone or hidden are dropped.
func (c *Composer) LikedVideos(ctx context.Context, viewerID string) ([]store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Likes, likedVideos(viewerID))
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

func (c *Composer) ChannelSubscribers(ctx context.Context, channelID, viewerID string) ([]store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Subscriptions, channelSubscribers(channelID, viewerID))
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

func (c *Composer) SubscribedChannels(ctx context.Context, subscriberID, viewerID string) ([]store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Subscriptions, subscribedChannels(subscriberID, viewerID))
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

// WatchHistory returns the viewer's watched videos in history order.
func (c *Composer) WatchHistory(ctx context.Context, viewerID string) ([]any, error) {
	docs, err := c.exec.Run(ctx, model.Users, watchHistory(viewerID))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NotFoundError("user not found")
	}
	history, _ := docs[0][model.FieldWatchHistory].([]any)
	if history == nil {
		history = []any{}
	}
	return history, nil
}

func (c *Composer) UserPlaylists(ctx context.Context, userID, viewerID string) ([]store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Playlists, userPlaylists(userID, viewerID))
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

// PlaylistDetail hides the videos the viewer may not see instead of failing.
func (c *Composer) PlaylistDetail(ctx context.Context, playlistID, viewerID string) (store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Playlists, playlistDetail(playlistID, viewerID))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NotFoundError("playlist not found")
	}
	return docs[0], nil
}

func (c *Composer) UserTweets(ctx context.Context, userID, viewerID string) ([]store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Tweets, userTweets(userID, viewerID))
	if err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

// VideoComments pages through the comments of a video the viewer can read.
func (c *Composer) VideoComments(ctx context.Context, videoID, viewerID string, page, limit int) (*pipeline.Page, error) {
	if _, err := c.readableVideo(ctx, videoID, viewerID); err != nil {
		return nil, err
	}
	return c.exec.Paginate(ctx, model.Comments, videoComments(videoID, viewerID), page, limit)
}

// ChannelProfile looks a channel up by username.
func (c *Composer) ChannelProfile(ctx context.Context, username, viewerID string) (store.Document, error) {
	username = common.NormalizeUsername(username)
	if username == "" {
		return nil, common.ValidationError("username is missing")
	}
	docs, err := c.exec.Run(ctx, model.Users, channelProfile(username, viewerID))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NotFoundError("channel does not exist")
	}
	return docs[0], nil
}

func (c *Composer) readableVideo(ctx context.Context, videoID, viewerID string) (store.Document, error) {
	docs, err := c.exec.Run(ctx, model.Videos, []pipeline.Stage{
		pipeline.Match(store.EqID(model.FieldID, videoID), access.VisibleTo(viewerID)),
		pipeline.Project(model.FieldOwner),
	})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, common.NotFoundError("video not found")
	}
	return docs[0], nil
}

func nonNil(docs []store.Document) []store.Document {
	if docs == nil {
		return []store.Document{}
	}
	return docs
}
