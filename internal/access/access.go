// Package access holds the ownership and visibility rules shared by the
// read views and the mutation paths.
package access

import (
	"context"
	"errors"

	"gotube/internal/common"
	"gotube/internal/model"
	"gotube/internal/store"
)

// RequireOwner fails with an AuthorizationError unless actorID owns doc.
func RequireOwner(doc store.Document, actorID, what string) error {
	if actorID == "" || doc.String(model.FieldOwner) != actorID {
		return common.AuthorizationError("you are not allowed to modify this " + what)
	}
	return nil
}

// VisibleTo matches videos the viewer may read: public ones, plus their own.
// An anonymous viewer only sees public videos.
func VisibleTo(viewerID string) store.Condition {
	if viewerID == "" {
		return PublicOnly()
	}
	return store.Or(
		store.Where(store.Eq(model.FieldIsPublic, true)),
		store.Where(store.EqID(model.FieldOwner, viewerID)),
	)
}

func PublicOnly() store.Condition {
	return store.Eq(model.FieldIsPublic, true)
}

// CanRead reports whether a fetched video is visible to the viewer.
func CanRead(video store.Document, viewerID string) bool {
	return store.Where(VisibleTo(viewerID)).Matches(video)
}

// LoadOwned fetches a document the actor is about to mutate. An unknown id is
// a NotFoundError; a document owned by someone else is an AuthorizationError.
func LoadOwned(ctx context.Context, s store.Store, collection, id, actorID, noun string) (store.Document, error) {
	doc, err := Load(ctx, s, collection, id, noun)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(doc, actorID, noun); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load fetches a document by id, translating store errors.
func Load(ctx context.Context, s store.Store, collection, id, noun string) (store.Document, error) {
	if !store.IsValidID(id) {
		return nil, common.ValidationError("invalid " + noun + " id")
	}
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, common.NotFoundError(noun + " not found")
		}
		return nil, common.StorageError("failed to load "+noun, err)
	}
	return doc, nil
}
