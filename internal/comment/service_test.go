package comment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gotube/internal/cascade"
	"gotube/internal/common"
	"gotube/internal/config"
	"gotube/internal/model"
	"gotube/internal/pipeline"
	"gotube/internal/store"
	"gotube/internal/view"
)

func newService(t *testing.T) (CommentService, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, model.EnsureIndexes(context.Background(), s))
	exec := pipeline.NewExecutor(s, model.Collections(), config.ViewConfig{DefaultPageSize: 10, MaxPageSize: 50}, zap.NewNop())
	coord := cascade.NewCoordinator(s, nil, cascade.NopLedger{}, zap.NewNop())
	return NewCommentService(s, view.NewComposer(exec, s, zap.NewNop()), coord, zap.NewNop()), s
}

func insertVideo(t *testing.T, s store.Store, owner string, public bool) store.Document {
	t.Helper()
	v, err := s.Insert(context.Background(), model.Videos, store.Document{
		model.FieldOwner: owner, model.FieldTitle: "v", model.FieldIsPublic: public,
	})
	require.NoError(t, err)
	return v
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	owner, fan := store.NewID(), store.NewID()
	public := insertVideo(t, s, owner, true)
	private := insertVideo(t, s, owner, false)

	c, err := svc.Add(ctx, fan, public.ID(), " great ")
	require.NoError(t, err)
	assert.Equal(t, "great", c[model.FieldContent])
	assert.Equal(t, public.ID(), c[model.FieldVideo])

	_, err = svc.Add(ctx, fan, private.ID(), "sneaky")
	assert.True(t, common.IsKind(err, common.KindNotFound))

	_, err = svc.Add(ctx, owner, private.ID(), "note to self")
	assert.NoError(t, err)

	_, err = svc.Add(ctx, fan, public.ID(), "")
	assert.True(t, common.IsKind(err, common.KindValidation))

	_, err = svc.Add(ctx, fan, "bad", "x")
	assert.True(t, common.IsKind(err, common.KindValidation))

	page, err := svc.List(ctx, public.ID(), fan, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalItems)
}

func TestUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	owner, fan := store.NewID(), store.NewID()
	v := insertVideo(t, s, owner, true)
	c, err := svc.Add(ctx, fan, v.ID(), "first")
	require.NoError(t, err)

	// the video owner does not own the comment
	_, err = svc.Update(ctx, owner, c.ID(), "edited")
	assert.True(t, common.IsKind(err, common.KindAuthorization))

	updated, err := svc.Update(ctx, fan, c.ID(), "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated[model.FieldContent])

	_, err = s.Insert(ctx, model.Likes, store.Document{model.FieldLikedBy: owner, model.FieldTargetKind: "comment", model.FieldTarget: c.ID()})
	require.NoError(t, err)

	assert.True(t, common.IsKind(svc.Delete(ctx, owner, c.ID()), common.KindAuthorization))
	require.NoError(t, svc.Delete(ctx, fan, c.ID()))

	n, _ := s.Count(ctx, model.Likes, store.Query{})
	assert.Zero(t, n)
}
