package cascade

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/dbmysql"
	"gotube/internal/model"
	"gotube/internal/store"
)

type fixture struct {
	store   *store.MemoryStore
	objects *common.MockObjectStorage
	ledger  *MockLedger
	coord   *Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	s := store.NewMemoryStore()
	for coll, idx := range model.Indexes() {
		require.NoError(t, s.EnsureIndexes(context.Background(), coll, idx))
	}
	objects := common.NewMockObjectStorage(ctrl)
	ledger := NewMockLedger(ctrl)
	return &fixture{
		store:   s,
		objects: objects,
		ledger:  ledger,
		coord:   NewCoordinator(s, objects, ledger, zap.NewNop()),
	}
}

func (f *fixture) insert(t *testing.T, coll string, doc store.Document) store.Document {
	t.Helper()
	d, err := f.store.Insert(context.Background(), coll, doc)
	require.NoError(t, err)
	return d
}

func (f *fixture) count(t *testing.T, coll string, filter store.Filter) int64 {
	t.Helper()
	n, err := f.store.Count(context.Background(), coll, store.Query{Filter: filter})
	require.NoError(t, err)
	return n
}

// seedVideo creates a video with likes, a liked comment and two playlists
// holding it, plus unrelated rows that must survive the cascade.
func seedVideo(t *testing.T, f *fixture) (video, other store.Document) {
	owner, fan := store.NewID(), store.NewID()
	video = f.insert(t, model.Videos, store.Document{
		model.FieldOwner:     owner,
		model.FieldTitle:     "doomed",
		model.FieldThumbnail: model.MediaRef("http://m/thumb", "thumb-1"),
		model.FieldVideoFile: model.MediaRef("http://m/file", "file-1"),
	})
	other = f.insert(t, model.Videos, store.Document{model.FieldOwner: owner, model.FieldTitle: "kept"})

	f.insert(t, model.Likes, store.Document{model.FieldLikedBy: fan, model.FieldTargetKind: "video", model.FieldTarget: video.ID()})
	f.insert(t, model.Likes, store.Document{model.FieldLikedBy: owner, model.FieldTargetKind: "video", model.FieldTarget: video.ID()})
	f.insert(t, model.Likes, store.Document{model.FieldLikedBy: fan, model.FieldTargetKind: "video", model.FieldTarget: other.ID()})

	comment := f.insert(t, model.Comments, store.Document{model.FieldOwner: fan, model.FieldVideo: video.ID(), model.FieldContent: "nice"})
	f.insert(t, model.Comments, store.Document{model.FieldOwner: fan, model.FieldVideo: other.ID(), model.FieldContent: "also nice"})
	f.insert(t, model.Likes, store.Document{model.FieldLikedBy: owner, model.FieldTargetKind: "comment", model.FieldTarget: comment.ID()})

	f.insert(t, model.Playlists, store.Document{model.FieldOwner: fan, model.FieldName: "a", model.FieldVideos: []any{video.ID(), other.ID()}})
	f.insert(t, model.Playlists, store.Document{model.FieldOwner: owner, model.FieldName: "b", model.FieldVideos: []any{video.ID()}})
	return video, other
}

func TestVideoDeleted_RemovesDependents(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	video, other := seedVideo(t, f)

	f.objects.EXPECT().Delete(gomock.Any(), "thumb-1").Return(nil)
	f.objects.EXPECT().Delete(gomock.Any(), "file-1").Return(nil)

	require.NoError(t, f.coord.VideoDeleted(ctx, video))

	assert.Zero(t, f.count(t, model.Likes, store.Where(store.Eq(model.FieldTarget, video.ID()))))
	assert.Zero(t, f.count(t, model.Comments, store.Where(store.Eq(model.FieldVideo, video.ID()))))
	assert.Zero(t, f.count(t, model.Likes, store.Where(store.Eq(model.FieldTargetKind, "comment"))))
	assert.Zero(t, f.count(t, model.Playlists, store.Where(store.Eq(model.FieldVideos, video.ID()))))

	assert.Equal(t, int64(1), f.count(t, model.Likes, store.Where(store.Eq(model.FieldTarget, other.ID()))))
	assert.Equal(t, int64(1), f.count(t, model.Comments, nil))
	assert.Equal(t, int64(2), f.count(t, model.Playlists, nil))
	assert.Equal(t, int64(1), f.count(t, model.Playlists, store.Where(store.Eq(model.FieldVideos, other.ID()))))
}

func TestVideoDeleted_ObjectFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	video, _ := seedVideo(t, f)

	f.objects.EXPECT().Delete(gomock.Any(), "thumb-1").Return(errors.New("bucket offline"))
	f.objects.EXPECT().Delete(gomock.Any(), "file-1").Return(nil)
	f.ledger.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cf *dbmysql.CascadeFailure) error {
			assert.Equal(t, EntityVideo, cf.Entity)
			assert.Equal(t, video.ID(), cf.EntityID)
			assert.Equal(t, StepObject, cf.Step)
			assert.Equal(t, "thumb-1", cf.Target)
			assert.Contains(t, cf.LastError, "bucket offline")
			return nil
		})

	err := f.coord.VideoDeleted(ctx, video)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket offline")

	// the store steps still ran
	assert.Zero(t, f.count(t, model.Likes, store.Where(store.Eq(model.FieldTarget, video.ID()))))
	assert.Zero(t, f.count(t, model.Comments, store.Where(store.Eq(model.FieldVideo, video.ID()))))
}

func TestVideoDeleted_StoreStepFailuresAreAggregated(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	s := store.NewMockStore(ctrl)
	objects := common.NewMockObjectStorage(ctrl)
	ledger := NewMockLedger(ctrl)
	coord := NewCoordinator(s, objects, ledger, zap.NewNop())

	video := store.Document{store.FieldID: store.NewID()}
	boom := errors.New("connection reset")

	s.EXPECT().DeleteMany(gomock.Any(), model.Likes, gomock.Any()).Return(int64(0), boom)
	s.EXPECT().Find(gomock.Any(), model.Comments, gomock.Any()).Return(nil, boom)
	s.EXPECT().UpdateMany(gomock.Any(), model.Playlists, gomock.Any(), gomock.Any()).Return(int64(2), nil)
	ledger.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("ledger down")).Times(2)

	err := coord.VideoDeleted(ctx, video)
	require.Error(t, err)
	assert.Contains(t, err.Error(), StepLikes)
	assert.Contains(t, err.Error(), StepComments)
	assert.NotContains(t, err.Error(), StepPlaylists)
}

func TestTweetAndCommentDeleted_RemoveOnlyTheirLikes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	actor := store.NewID()
	tweet := f.insert(t, model.Tweets, store.Document{model.FieldOwner: actor, model.FieldContent: "hi"})
	comment := f.insert(t, model.Comments, store.Document{model.FieldOwner: actor, model.FieldContent: "yo"})

	f.insert(t, model.Likes, store.Document{model.FieldLikedBy: actor, model.FieldTargetKind: "tweet", model.FieldTarget: tweet.ID()})
	f.insert(t, model.Likes, store.Document{model.FieldLikedBy: actor, model.FieldTargetKind: "comment", model.FieldTarget: comment.ID()})

	require.NoError(t, f.coord.TweetDeleted(ctx, tweet.ID()))
	assert.Zero(t, f.count(t, model.Likes, store.Where(store.Eq(model.FieldTargetKind, "tweet"))))
	assert.Equal(t, int64(1), f.count(t, model.Likes, nil))

	require.NoError(t, f.coord.CommentDeleted(ctx, comment.ID()))
	assert.Zero(t, f.count(t, model.Likes, nil))
}

func TestObjectReplaced(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.ObjectReplaced(context.Background(), "user", store.NewID(), ""))

	f.objects.EXPECT().Delete(gomock.Any(), "avatar-1").Return(nil)
	require.NoError(t, f.coord.ObjectReplaced(context.Background(), "user", store.NewID(), "avatar-1"))
}

func TestRetry_UnknownStep(t *testing.T) {
	f := newFixture(t)
	err := f.coord.Retry(context.Background(), dbmysql.CascadeFailure{Entity: EntityVideo, EntityID: store.NewID(), Step: "bogus"})
	assert.Error(t, err)
}
