package subscription

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
	"gotube/internal/toggle"
	"gotube/internal/view"
)

func newService(t *testing.T) (SubscriptionService, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, model.EnsureIndexes(context.Background(), s))
	exec := pipeline.NewExecutor(s, model.Collections(), config.ViewConfig{DefaultPageSize: 10, MaxPageSize: 50}, zap.NewNop())
	return NewSubscriptionService(toggle.NewEngine(s, zap.NewNop()), view.NewComposer(exec, s, zap.NewNop()), zap.NewNop()), s
}

func insertUser(t *testing.T, s store.Store, name string) string {
	t.Helper()
	u, err := s.Insert(context.Background(), model.Users, store.Document{model.FieldUsername: name, model.FieldEmail: name + "@x.io"})
	require.NoError(t, err)
	return u.ID()
}

func TestSubscribeAndList(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	channel := insertUser(t, s, "channel")
	fan := insertUser(t, s, "fan")
	_, err := s.Insert(ctx, model.Videos, store.Document{model.FieldOwner: channel, model.FieldTitle: "latest", model.FieldIsPublic: true})
	require.NoError(t, err)

	_, err = svc.Toggle(ctx, channel, channel)
	assert.True(t, common.IsKind(err, common.KindValidation))

	res, err := svc.Toggle(ctx, fan, channel)
	require.NoError(t, err)
	assert.True(t, res.Active)

	subs, err := svc.Subscribers(ctx, channel, channel)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	sub := subs[0]["subscriber"].(store.Document)
	assert.Equal(t, "fan", sub[model.FieldUsername])
	assert.Equal(t, false, sub["subscribedToSubscriber"])

	channels, err := svc.Channels(ctx, fan, "")
	require.NoError(t, err)
	require.Len(t, channels, 1)
	ch := channels[0]["subscribedChannel"].(store.Document)
	assert.Equal(t, int64(1), ch["videosCount"])
	assert.Equal(t, int64(1), ch["subscribersCount"])
	assert.Equal(t, "latest", ch.String("latestVideo.title"))

	res, err = svc.Toggle(ctx, fan, channel)
	require.NoError(t, err)
	assert.False(t, res.Active)

	channels, err = svc.Channels(ctx, fan, "")
	require.NoError(t, err)
	assert.Empty(t, channels)
}
