package pipeline

import (
	"context"

	"gotube/internal/common"
	"gotube/internal/store"
)

type Page struct {
	Items       []store.Document `json:"items"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	TotalItems  int64            `json:"totalItems"`
	TotalPages  int              `json:"totalPages"`
	HasNextPage bool             `json:"hasNextPage"`
	HasPrevPage bool             `json:"hasPrevPage"`
}

// Count runs the pipeline in count mode: sort and project stages are
// skipped, and a pipeline made only of search and matches is counted by the store.
func (e *Executor) Count(ctx context.Context, collection string, stages []Stage) (int64, error) {
	if err := e.Validate(collection, stages); err != nil {
		return 0, err
	}
	counting := make([]Stage, 0, len(stages))
	for _, s := range stages {
		if s.Kind == KindSort || s.Kind == KindProject {
			continue
		}
		counting = append(counting, s)
	}

	q, rest := pushdown(counting)
	if len(rest) == 0 {
		n, err := e.store.Count(ctx, collection, q)
		if err != nil {
			return 0, common.StorageError("failed to count "+collection, err)
		}
		return n, nil
	}
	docs, err := e.run(ctx, collection, counting)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

// Paginate runs the membership-deciding prefix of the pipeline, cuts the
// requested page and only then runs the remaining reshaping stages on it.
// Page numbers are 1-based; limit is clamped to the configured maximum.
func (e *Executor) Paginate(ctx context.Context, collection string, stages []Stage, page, limit int) (*Page, error) {
	if err := e.Validate(collection, stages); err != nil {
		return nil, err
	}
	page, limit = e.normalize(page, limit)

	split := 0
	for i, s := range stages {
		if s.changesMembership() {
			split = i + 1
		}
	}
	prefix, suffix := stages[:split], stages[split:]

	docs, err := e.run(ctx, collection, prefix)
	if err != nil {
		return nil, err
	}
	total, err := e.Count(ctx, collection, prefix)
	if err != nil {
		return nil, err
	}

	// (page-1)*limit is only computed when it cannot pass len(docs).
	start := len(docs)
	if page-1 <= len(docs)/limit {
		start = min((page-1)*limit, len(docs))
	}
	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	items, err := e.apply(ctx, docs[start:end], suffix)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.Document{}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Page{
		Items:       items,
		Page:        page,
		Limit:       limit,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}, nil
}

func (e *Executor) normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = e.defaultLimit
	}
	if limit > e.maxLimit {
		limit = e.maxLimit
	}
	return page, limit
}
