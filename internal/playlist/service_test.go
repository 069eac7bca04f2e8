package playlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/config"
	"gotube/internal/model"
	"gotube/internal/pipeline"
	"gotube/internal/store"
	"gotube/internal/view"
)

func newService(t *testing.T) (PlaylistService, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, model.EnsureIndexes(context.Background(), s))
	exec := pipeline.NewExecutor(s, model.Collections(), config.ViewConfig{DefaultPageSize: 10, MaxPageSize: 50}, zap.NewNop())
	return NewPlaylistService(s, view.NewComposer(exec, s, zap.NewNop()), zap.NewNop()), s
}

func TestPlaylistLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	owner, stranger := store.NewID(), store.NewID()
	video, err := s.Insert(ctx, model.Videos, store.Document{model.FieldOwner: stranger, model.FieldTitle: "v", model.FieldViews: 4, model.FieldIsPublic: true})
	require.NoError(t, err)
	hidden, err := s.Insert(ctx, model.Videos, store.Document{model.FieldOwner: stranger, model.FieldTitle: "h", model.FieldIsPublic: false})
	require.NoError(t, err)

	_, err = svc.Create(ctx, owner, "mix", "")
	assert.True(t, common.IsKind(err, common.KindValidation))

	pl, err := svc.Create(ctx, owner, "mix", "weekend")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := svc.AddVideo(ctx, owner, pl.ID(), video.ID())
		require.NoError(t, err)
		assert.Equal(t, []any{video.ID()}, got[model.FieldVideos])
	}

	_, err = svc.AddVideo(ctx, owner, pl.ID(), hidden.ID())
	assert.True(t, common.IsKind(err, common.KindNotFound))

	// the video's owner may not edit someone else's playlist
	_, err = svc.AddVideo(ctx, stranger, pl.ID(), video.ID())
	assert.True(t, common.IsKind(err, common.KindAuthorization))
	_, err = svc.RemoveVideo(ctx, stranger, pl.ID(), video.ID())
	assert.True(t, common.IsKind(err, common.KindAuthorization))

	detail, err := svc.Get(ctx, pl.ID(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail["totalVideos"])
	assert.Equal(t, int64(4), detail["totalViews"])

	updated, err := svc.Update(ctx, owner, pl.ID(), "renamed", "still weekend")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated[model.FieldName])

	got, err := svc.RemoveVideo(ctx, owner, pl.ID(), video.ID())
	require.NoError(t, err)
	assert.Equal(t, []any{}, got[model.FieldVideos])

	lists, err := svc.UserPlaylists(ctx, owner, owner)
	require.NoError(t, err)
	require.Len(t, lists, 1)

	assert.True(t, common.IsKind(svc.Delete(ctx, stranger, pl.ID()), common.KindAuthorization))
	require.NoError(t, svc.Delete(ctx, owner, pl.ID()))
	_, err = svc.Get(ctx, pl.ID(), owner)
	assert.True(t, common.IsKind(err, common.KindNotFound))
}
