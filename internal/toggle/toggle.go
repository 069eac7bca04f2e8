// Package toggle flips the existence of a relation row between an actor and
// a target: likes on videos, comments and tweets, and channel subscriptions.
package toggle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/store"
)

// Target describes one relation row shape and the entity it points at.
type Target struct {
	Relation    string
	ActorField  string
	TargetField string
	TargetID    string
	// Kind holds discriminator fields that are part of the relation key
	Kind store.Document
	// Collection is where the target entity must exist
	Collection string
	Noun       string
	// NoSelf forbids actor == target
	NoSelf bool
}

func Like(t model.LikeTarget) Target {
	return Target{
		Relation:    model.Likes,
		ActorField:  model.FieldLikedBy,
		TargetField: model.FieldTarget,
		TargetID:    t.ID(),
		Kind:        store.Document{model.FieldTargetKind: string(t.Kind())},
		Collection:  t.Kind().Collection(),
		Noun:        string(t.Kind()),
	}
}

func Subscription(channelID string) Target {
	return Target{
		Relation:    model.Subscriptions,
		ActorField:  model.FieldSubscriber,
		TargetField: model.FieldChannel,
		TargetID:    channelID,
		Collection:  model.Users,
		Noun:        "channel",
		NoSelf:      true,
	}
}

type Result struct {
	Active bool `json:"active"`
}

type Engine struct {
	store  store.Store
	logger *zap.Logger
}

func NewEngine(s store.Store, logger *zap.Logger) *Engine {
	return &Engine{store: s, logger: logger}
}

// Toggle deletes the relation row when it exists and creates it otherwise.
// It is not atomic: two concurrent toggles may both see "absent". The unique
// index on the relation rejects the second insert, which is reported as
// active because the row the caller wanted now exists. Likewise a delete that
// finds nothing means a concurrent toggle already removed it.
func (e *Engine) Toggle(ctx context.Context, actorID string, t Target) (*Result, error) {
	if !store.IsValidID(actorID) {
		return nil, common.ValidationError("invalid actor id")
	}
	if !store.IsValidID(t.TargetID) {
		return nil, common.ValidationError("invalid id", t.TargetID)
	}
	if t.NoSelf && actorID == t.TargetID {
		return nil, common.ValidationError("you cannot subscribe to your own channel")
	}

	if _, err := e.store.Get(ctx, t.Collection, t.TargetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError(t.Noun + " not found")
		}
		return nil, common.StorageError("failed to load toggle target", err)
	}

	key := store.Where(
		store.EqID(t.ActorField, actorID),
		store.EqID(t.TargetField, t.TargetID),
	)
	row := store.Document{t.ActorField: actorID, t.TargetField: t.TargetID}
	for k, v := range t.Kind {
		key = key.And(store.Eq(k, v))
		row[k] = v
	}

	existing, err := e.store.Find(ctx, t.Relation, store.Query{Filter: key})
	if err != nil {
		return nil, common.StorageError("failed to read "+t.Relation, err)
	}

	if len(existing) > 0 {
		err := e.store.Delete(ctx, t.Relation, existing[0].ID())
		switch {
		case err == nil, errors.Is(err, store.ErrNotFound):
			return &Result{Active: false}, nil
		default:
			return nil, common.StorageError("failed to remove "+t.Relation, err)
		}
	}

	_, err = e.store.Insert(ctx, t.Relation, row)
	switch {
	case err == nil:
		return &Result{Active: true}, nil
	case errors.Is(err, store.ErrDuplicate):
		e.logger.Debug("toggle lost insert race",
			zap.String("relation", t.Relation),
			zap.String("actor", actorID),
			zap.String("target", t.TargetID),
		)
		return &Result{Active: true}, nil
	default:
		return nil, common.StorageError("failed to create "+t.Relation, err)
	}
}
