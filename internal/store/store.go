// Package store is the generic entity store the view engine reads from and
// the services write to. Documents are schemaless maps keyed by collection.
package store

import (
	"context"
	"errors"
)

//go:generate mockgen -destination=mock_store.go -package=store gotube/internal/store Store

var (
	ErrNotFound  = errors.New("store: document not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
	FieldScore     = "score"
)

// Query selects documents. Text, when set, runs a full-text search over the
// collection's text index and adds a relevance score to each result.
type Query struct {
	Filter Filter
	Text   string
}

// Update is applied atomically to a single document.
type Update struct {
	Set      Document
	Inc      map[string]int64
	AddToSet map[string]any
	Pull     map[string]any
}

func (u Update) IsEmpty() bool {
	return len(u.Set) == 0 && len(u.Inc) == 0 && len(u.AddToSet) == 0 && len(u.Pull) == 0
}

type Index struct {
	Name   string
	Fields []string
	Unique bool
	Text   bool
}

// Store is implemented by the Mongo entity store and the in-memory store.
// Find returns documents in insertion order (createdAt, then _id).
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	Count(ctx context.Context, collection string, q Query) (int64, error)
	Insert(ctx context.Context, collection string, doc Document) (Document, error)
	Update(ctx context.Context, collection, id string, u Update) error
	UpdateMany(ctx context.Context, collection string, f Filter, u Update) (int64, error)
	Delete(ctx context.Context, collection, id string) error
	DeleteMany(ctx context.Context, collection string, f Filter) (int64, error)
	EnsureIndexes(ctx context.Context, collection string, indexes []Index) error
	Ping(ctx context.Context) error
}
