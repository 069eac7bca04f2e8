package video

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

type PublishInput struct {
	Title       string
	Description string
	Duration    float64
	Video       *common.Upload
	Thumbnail   *common.Upload
}

type UpdateInput struct {
	Title       string
	Description string
	Thumbnail   *common.Upload
}

type VideoService interface {
	Feed(ctx context.Context, q view.FeedQuery) (*pipeline.Page, error)
	Publish(ctx context.Context, ownerID string, in PublishInput) (store.Document, error)
	Get(ctx context.Context, videoID, viewerID string) (store.Document, error)
	Update(ctx context.Context, actorID, videoID string, in UpdateInput) (store.Document, error)
	Delete(ctx context.Context, actorID, videoID string) error
	TogglePublish(ctx context.Context, actorID, videoID string) (store.Document, error)
	CheckOwner(ctx context.Context, actorID, videoID string) error
}

type videoService struct {
	store    store.Store
	composer *view.Composer
	objects  common.ObjectStorage
	cascade  *cascade.Coordinator
	logger   *zap.Logger
}

func NewVideoService(s store.Store, composer *view.Composer, objects common.ObjectStorage, coord *cascade.Coordinator, logger *zap.Logger) VideoService {
	return &videoService{store: s, composer: composer, objects: objects, cascade: coord, logger: logger}
}

func (s *videoService) Feed(ctx context.Context, q view.FeedQuery) (*pipeline.Page, error) {
	return s.composer.VideoFeed(ctx, q)
}

func (s *videoService) Publish(ctx context.Context, ownerID string, in PublishInput) (store.Document, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := common.RequireFields(map[string]string{"title": in.Title, "description": in.Description}); err != nil {
		return nil, err
	}
	if in.Duration < 0 {
		return nil, common.ValidationError("duration cannot be negative")
	}
	if in.Video == nil {
		return nil, common.ValidationError("video file is required")
	}
	if in.Thumbnail == nil {
		return nil, common.ValidationError("thumbnail is required")
	}
	if in.Video.FileType() != common.MediaFileTypeVideo {
		return nil, common.ValidationError("video file must be a video")
	}
	if in.Thumbnail.FileType() != common.MediaFileTypeImage {
		return nil, common.ValidationError("thumbnail must be an image")
	}

	videoFile, err := s.objects.Upload(ctx, in.Video)
	if err != nil {
		return nil, common.StorageError("failed to upload video file", err)
	}
	thumbnail, err := s.objects.Upload(ctx, in.Thumbnail)
	if err != nil {
		s.discard(ctx, videoFile)
		return nil, common.StorageError("failed to upload thumbnail", err)
	}

	doc, err := s.store.Insert(ctx, model.Videos, store.Document{
		model.FieldOwner:       ownerID,
		model.FieldTitle:       in.Title,
		model.FieldDescription: in.Description,
		model.FieldDuration:    in.Duration,
		model.FieldViews:       0,
		model.FieldIsPublic:    true,
		model.FieldVideoFile:   model.MediaRef(videoFile.URL, videoFile.ID),
		model.FieldThumbnail:   model.MediaRef(thumbnail.URL, thumbnail.ID),
	})
	if err != nil {
		s.discard(ctx, videoFile, thumbnail)
		return nil, common.StorageError("failed to save video", err)
	}
	return doc, nil
}

// discard removes objects uploaded for a request that then failed.
func (s *videoService) discard(ctx context.Context, objects ...*common.StoredObject) {
	for _, o := range objects {
		if err := s.objects.Delete(ctx, o.ID); err != nil {
			s.logger.Warn("failed to discard upload", zap.String("publicId", o.ID), zap.Error(err))
		}
	}
}

func (s *videoService) Get(ctx context.Context, videoID, viewerID string) (store.Document, error) {
	return s.composer.VideoDetail(ctx, videoID, viewerID)
}

func (s *videoService) CheckOwner(ctx context.Context, actorID, videoID string) error {
	_, err := access.LoadOwned(ctx, s.store, model.Videos, videoID, actorID, "video")
	return err
}

func (s *videoService) Update(ctx context.Context, actorID, videoID string, in UpdateInput) (store.Document, error) {
	video, err := access.LoadOwned(ctx, s.store, model.Videos, videoID, actorID, "video")
	if err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := common.RequireFields(map[string]string{"title": in.Title, "description": in.Description}); err != nil {
		return nil, err
	}
	set := store.Document{
		model.FieldTitle:       in.Title,
		model.FieldDescription: in.Description,
	}

	var oldThumbnail string
	var uploaded *common.StoredObject
	if in.Thumbnail != nil {
		if in.Thumbnail.FileType() != common.MediaFileTypeImage {
			return nil, common.ValidationError("thumbnail must be an image")
		}
		thumbnail, err := s.objects.Upload(ctx, in.Thumbnail)
		if err != nil {
			return nil, common.StorageError("failed to upload thumbnail", err)
		}
		uploaded = thumbnail
		set[model.FieldThumbnail] = model.MediaRef(thumbnail.URL, thumbnail.ID)
		oldThumbnail = video.String(model.FieldThumbnail + "." + model.FieldPublicID)
	}

	if err := s.store.Update(ctx, model.Videos, videoID, store.Update{Set: set}); err != nil {
		if uploaded != nil {
			s.discard(ctx, uploaded)
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError("video not found")
		}
		return nil, common.StorageError("failed to update video", err)
	}
	s.cascade.ObjectReplaced(ctx, cascade.EntityVideo, videoID, oldThumbnail)

	return access.Load(ctx, s.store, model.Videos, videoID, "video")
}

// Delete removes the video, then its dependents. Cleanup failures are logged
// and recorded by the cascade; the delete itself still succeeds.
func (s *videoService) Delete(ctx context.Context, actorID, videoID string) error {
	video, err := access.LoadOwned(ctx, s.store, model.Videos, videoID, actorID, "video")
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, model.Videos, videoID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return common.NotFoundError("video not found")
		}
		return common.StorageError("failed to delete video", err)
	}
	if err := s.cascade.VideoDeleted(ctx, video); err != nil {
		s.logger.Warn("video deleted with incomplete cleanup", zap.String("videoId", videoID), zap.Error(err))
	}
	return nil
}

func (s *videoService) TogglePublish(ctx context.Context, actorID, videoID string) (store.Document, error) {
	video, err := access.LoadOwned(ctx, s.store, model.Videos, videoID, actorID, "video")
	if err != nil {
		return nil, err
	}
	public := !video.Bool(model.FieldIsPublic)
	if err := s.store.Update(ctx, model.Videos, videoID, store.Update{
		Set: store.Document{model.FieldIsPublic: public},
	}); err != nil {
		return nil, common.StorageError("failed to toggle publish status", err)
	}
	return store.Document{store.FieldID: videoID, model.FieldIsPublic: public}, nil
}
