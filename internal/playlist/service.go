package playlist

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"gotube/internal/access"
	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/store"
	"gotube/internal/view"
)

type PlaylistService interface {
	Create(ctx context.Context, ownerID, name, description string) (store.Document, error)
	UserPlaylists(ctx context.Context, userID, viewerID string) ([]store.Document, error)
	Get(ctx context.Context, playlistID, viewerID string) (store.Document, error)
	Update(ctx context.Context, actorID, playlistID, name, description string) (store.Document, error)
	Delete(ctx context.Context, actorID, playlistID string) error
	AddVideo(ctx context.Context, actorID, playlistID, videoID string) (store.Document, error)
	RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (store.Document, error)
	CheckOwner(ctx context.Context, actorID, playlistID string) error
}

type playlistService struct {
	store    store.Store
	composer *view.Composer
	logger   *zap.Logger
}

func NewPlaylistService(s store.Store, composer *view.Composer, logger *zap.Logger) PlaylistService {
	return &playlistService{store: s, composer: composer, logger: logger}
}

func normalize(name, description string) (string, string, error) {
	name, description = strings.TrimSpace(name), strings.TrimSpace(description)
	if err := common.RequireFields(map[string]string{"name": name, "description": description}); err != nil {
		return "", "", err
	}
	return name, description, nil
}

func (s *playlistService) Create(ctx context.Context, ownerID, name, description string) (store.Document, error) {
	name, description, err := normalize(name, description)
	if err != nil {
		return nil, err
	}
	doc, err := s.store.Insert(ctx, model.Playlists, store.Document{
		model.FieldOwner:       ownerID,
		model.FieldName:        name,
		model.FieldDescription: description,
		model.FieldVideos:      []any{},
	})
	if err != nil {
		return nil, common.StorageError("failed to create playlist", err)
	}
	return doc, nil
}

func (s *playlistService) UserPlaylists(ctx context.Context, userID, viewerID string) ([]store.Document, error) {
	return s.composer.UserPlaylists(ctx, userID, viewerID)
}

func (s *playlistService) Get(ctx context.Context, playlistID, viewerID string) (store.Document, error) {
	return s.composer.PlaylistDetail(ctx, playlistID, viewerID)
}

func (s *playlistService) CheckOwner(ctx context.Context, actorID, playlistID string) error {
	_, err := access.LoadOwned(ctx, s.store, model.Playlists, playlistID, actorID, "playlist")
	return err
}

func (s *playlistService) Update(ctx context.Context, actorID, playlistID, name, description string) (store.Document, error) {
	if _, err := access.LoadOwned(ctx, s.store, model.Playlists, playlistID, actorID, "playlist"); err != nil {
		return nil, err
	}
	name, description, err := normalize(name, description)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, playlistID, store.Update{Set: store.Document{
		model.FieldName:        name,
		model.FieldDescription: description,
	}})
}

func (s *playlistService) Delete(ctx context.Context, actorID, playlistID string) error {
	if _, err := access.LoadOwned(ctx, s.store, model.Playlists, playlistID, actorID, "playlist"); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, model.Playlists, playlistID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NotFoundError("playlist not found")
		}
		return common.StorageError("failed to delete playlist", err)
	}
	return nil
}

// AddVideo adds a video the playlist owner can see; adding it twice is a no-op.
func (s *playlistService) AddVideo(ctx context.Context, actorID, playlistID, videoID string) (store.Document, error) {
	if _, err := access.LoadOwned(ctx, s.store, model.Playlists, playlistID, actorID, "playlist"); err != nil {
		return nil, err
	}
	video, err := access.Load(ctx, s.store, model.Videos, videoID, "video")
	if err != nil {
		return nil, err
	}
	if !access.CanRead(video, actorID) {
		return nil, common.NotFoundError("video not found")
	}
	return s.update(ctx, playlistID, store.Update{AddToSet: map[string]any{model.FieldVideos: videoID}})
}

func (s *playlistService) RemoveVideo(ctx context.Context, actorID, playlistID, videoID string) (store.Document, error) {
	if _, err := access.LoadOwned(ctx, s.store, model.Playlists, playlistID, actorID, "playlist"); err != nil {
		return nil, err
	}
	if !store.IsValidID(videoID) {
		return nil, common.ValidationError("invalid video id")
	}
	return s.update(ctx, playlistID, store.Update{Pull: map[string]any{model.FieldVideos: videoID}})
}

func (s *playlistService) update(ctx context.Context, playlistID string, u store.Update) (store.Document, error) {
	if err := s.store.Update(ctx, model.Playlists, playlistID, u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError("playlist not found")
		}
		return nil, common.StorageError("failed to update playlist", err)
	}
	return access.Load(ctx, s.store, model.Playlists, playlistID, "playlist")
}
