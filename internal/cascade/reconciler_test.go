package cascade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gotube/internal/config"
	"gotube/internal/dbmysql"
	"gotube/internal/model"
	"gotube/internal/store"
)

var testCascadeConfig = config.CascadeConfig{ReconcileInterval: time.Minute, MaxAttempts: 5, BatchSize: 50}

func TestReconciler_RunOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r := NewReconciler(f.coord, f.ledger, testCascadeConfig, zap.NewNop())

	tweet := store.NewID()
	f.insert(t, model.Likes, store.Document{model.FieldLikedBy: store.NewID(), model.FieldTargetKind: "tweet", model.FieldTarget: tweet})

	pending := []dbmysql.CascadeFailure{
		{ID: 1, Entity: EntityTweet, EntityID: tweet, Step: StepLikes},
		{ID: 2, Entity: EntityVideo, EntityID: store.NewID(), Step: StepObject, Target: "thumb-9", Attempts: 2},
	}
	f.ledger.EXPECT().Pending(gomock.Any(), 5, 50).Return(pending, nil)
	f.objects.EXPECT().Delete(gomock.Any(), "thumb-9").Return(errors.New("still offline"))
	f.ledger.EXPECT().MarkResolved(gomock.Any(), uint(1)).Return(nil)
	f.ledger.EXPECT().IncrementAttempt(gomock.Any(), uint(2), "still offline").Return(nil)

	err := r.RunOnce(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still offline")
	assert.Zero(t, f.count(t, model.Likes, nil))
}

func TestReconciler_RunOnce_PendingFails(t *testing.T) {
	f := newFixture(t)
	r := NewReconciler(f.coord, f.ledger, testCascadeConfig, zap.NewNop())
	f.ledger.EXPECT().Pending(gomock.Any(), 5, 50).Return(nil, errors.New("mysql gone"))
	assert.Error(t, r.RunOnce(context.Background()))
}

func TestReconciler_StartStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	cfg := testCascadeConfig
	cfg.ReconcileInterval = 5 * time.Millisecond
	r := NewReconciler(f.coord, f.ledger, cfg, zap.NewNop())
	f.ledger.EXPECT().Pending(gomock.Any(), 5, 50).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop")
	}
}

func TestNopLedger(t *testing.T) {
	var l Ledger = NopLedger{}
	ctx := context.Background()
	assert.NoError(t, l.Record(ctx, &dbmysql.CascadeFailure{}))
	p, err := l.Pending(ctx, 1, 1)
	assert.NoError(t, err)
	assert.Empty(t, p)
	assert.NoError(t, l.MarkResolved(ctx, 1))
	assert.NoError(t, l.IncrementAttempt(ctx, 1, ""))
}
