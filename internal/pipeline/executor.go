package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"gotube/internal/common"
	"gotube/internal/config"
	"gotube/internal/store"
)

// joinKeys carries each joined document's match keys through its sub-pipeline.
const joinKeys = "\x00joinKeys"

type Executor struct {
	store        store.Store
	collections  map[string]bool
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

func NewExecutor(s store.Store, collections []string, cfg config.ViewConfig, logger *zap.Logger) *Executor {
	known := make(map[string]bool, len(collections))
	for _, c := range collections {
		known[c] = true
	}
	return &Executor{
		store:        s,
		collections:  known,
		defaultLimit: cfg.DefaultPageSize,
		maxLimit:     cfg.MaxPageSize,
		logger:       logger,
	}
}

// Validate checks a pipeline without touching the store. Malformed ids are a
// ValidationError; structural mistakes such as joining an unknown collection
// are a ConfigError.
func (e *Executor) Validate(collection string, stages []Stage) error {
	if !e.collections[collection] {
		return common.ConfigError(fmt.Sprintf("unknown collection %q", collection), nil)
	}
	var badIDs []string
	if err := e.validate(stages, true, &badIDs); err != nil {
		return err
	}
	if len(badIDs) > 0 {
		return common.ValidationError("invalid id", badIDs...)
	}
	return nil
}

func (e *Executor) validate(stages []Stage, top bool, badIDs *[]string) error {
	for i, s := range stages {
		switch s.Kind {
		case KindMatch:
			*badIDs = append(*badIDs, s.Filter.InvalidIDs()...)
		case KindSearch:
			if !top || i != 0 {
				return common.ConfigError("search must be the first stage", nil)
			}
			if s.Text == "" {
				return common.ConfigError("search needs text", nil)
			}
		case KindJoin:
			j := s.Join
			if j == nil || j.LocalField == "" || j.ForeignField == "" || j.As == "" {
				return common.ConfigError("join is missing fields", nil)
			}
			if !e.collections[j.From] {
				return common.ConfigError(fmt.Sprintf("join from unknown collection %q", j.From), nil)
			}
			*badIDs = append(*badIDs, j.Where.InvalidIDs()...)
			if err := e.validate(j.Pipeline, false, badIDs); err != nil {
				return err
			}
		case KindUnwind:
			if s.Field == "" {
				return common.ConfigError("unwind needs a field", nil)
			}
		case KindDerive:
			if s.Field == "" || !s.Expr.valid() {
				return common.ConfigError(fmt.Sprintf("invalid derive of %q", s.Field), nil)
			}
			if s.Expr.Op == OpContainsID && s.Expr.ID != "" && !store.IsValidID(s.Expr.ID) {
				*badIDs = append(*badIDs, s.Expr.ID)
			}
		case KindSort:
			if len(s.Sort) == 0 {
				return common.ConfigError("sort needs keys", nil)
			}
		case KindProject:
			if len(s.Fields) == 0 {
				return common.ConfigError("project needs fields", nil)
			}
		default:
			return common.ConfigError(fmt.Sprintf("unknown stage %q", s.Kind), nil)
		}
	}
	return nil
}

// Run executes the pipeline over collection.
func (e *Executor) Run(ctx context.Context, collection string, stages []Stage) ([]store.Document, error) {
	if err := e.Validate(collection, stages); err != nil {
		return nil, err
	}
	start := time.Now()
	docs, err := e.run(ctx, collection, stages)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("pipeline run",
		zap.String("collection", collection),
		zap.Int("stages", len(stages)),
		zap.Int("results", len(docs)),
		zap.Duration("duration", time.Since(start)),
	)
	return docs, nil
}

func (e *Executor) run(ctx context.Context, collection string, stages []Stage) ([]store.Document, error) {
	q, rest := pushdown(stages)
	docs, err := e.store.Find(ctx, collection, q)
	if err != nil {
		return nil, common.StorageError("failed to read "+collection, err)
	}
	return e.apply(ctx, docs, rest)
}

// pushdown folds a leading search and the matches right after it into a store query.
func pushdown(stages []Stage) (store.Query, []Stage) {
	var q store.Query
	i := 0
	if len(stages) > 0 && stages[0].Kind == KindSearch {
		q.Text = stages[0].Text
		i = 1
	}
	for i < len(stages) && stages[i].Kind == KindMatch {
		q.Filter = q.Filter.And(stages[i].Filter...)
		i++
	}
	return q, stages[i:]
}

func (e *Executor) apply(ctx context.Context, docs []store.Document, stages []Stage) ([]store.Document, error) {
	var err error
	for _, s := range stages {
		switch s.Kind {
		case KindMatch:
			kept := docs[:0]
			for _, d := range docs {
				if s.Filter.Matches(d) {
					kept = append(kept, d)
				}
			}
			docs = kept
		case KindJoin:
			if docs, err = e.join(ctx, docs, s.Join); err != nil {
				return nil, err
			}
		case KindUnwind:
			docs = unwind(docs, s.Field)
		case KindDerive:
			for _, d := range docs {
				d.Set(s.Field, s.Expr.eval(d))
			}
		case KindSort:
			sortDocs(docs, s.Sort)
		case KindProject:
			for i, d := range docs {
				docs[i] = project(d, s.Fields)
			}
		}
	}
	return docs, nil
}

// join fetches every foreign document for the whole batch with one query,
// so the number of store reads does not grow with the number of documents.
func (e *Executor) join(ctx context.Context, docs []store.Document, j *JoinSpec) ([]store.Document, error) {
	seen := make(map[string]bool)
	var keys []any
	for _, d := range docs {
		for _, v := range store.Values(d.Get(j.LocalField)) {
			k := store.Key(v)
			if !seen[k] {
				seen[k] = true
				keys = append(keys, v)
			}
		}
	}

	var foreign []store.Document
	if len(keys) > 0 {
		var err error
		foreign, err = e.store.Find(ctx, j.From, store.Query{Filter: j.Where.And(store.In(j.ForeignField, keys))})
		if err != nil {
			return nil, common.StorageError("failed to join "+j.From, err)
		}
		for _, f := range foreign {
			var fk []any
			for _, v := range store.Values(f.Get(j.ForeignField)) {
				fk = append(fk, store.Key(v))
			}
			f[joinKeys] = fk
		}
		if len(j.Pipeline) > 0 {
			if foreign, err = e.apply(ctx, foreign, j.Pipeline); err != nil {
				return nil, err
			}
		}
	}

	groups := make(map[string][]store.Document)
	for _, f := range foreign {
		fk, _ := f[joinKeys].([]any)
		delete(f, joinKeys)
		for _, k := range fk {
			groups[k.(string)] = append(groups[k.(string)], f)
		}
	}

	for _, d := range docs {
		attached := make([]any, 0)
		for _, v := range store.Values(d.Get(j.LocalField)) {
			for _, f := range groups[store.Key(v)] {
				attached = append(attached, f.Clone())
			}
		}
		d.Set(j.As, attached)
	}
	return docs, nil
}

// unwind emits one document per array element; documents whose array is
// empty or missing are dropped.
func unwind(docs []store.Document, field string) []store.Document {
	out := make([]store.Document, 0, len(docs))
	for _, d := range docs {
		v := d.Get(field)
		arr, ok := v.([]any)
		if !ok {
			if v != nil {
				out = append(out, d)
			}
			continue
		}
		for _, el := range arr {
			c := d.Clone()
			c.Set(field, store.CloneValue(el))
			out = append(out, c)
		}
	}
	return out
}

func sortDocs(docs []store.Document, keys []SortKey) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			c := store.Compare(docs[i].Get(k.Field), docs[j].Get(k.Field))
			if c == 0 {
				continue
			}
			if k.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func project(src store.Document, fields []string) store.Document {
	out := store.Document{store.FieldID: src[store.FieldID]}
	if k, ok := src[joinKeys]; ok {
		out[joinKeys] = k
	}
	for _, f := range fields {
		projectInto(out, src, strings.Split(f, "."))
	}
	return out
}

func projectInto(dst, src store.Document, parts []string) {
	v, ok := src[parts[0]]
	if !ok {
		return
	}
	if m, isMap := v.(map[string]any); isMap {
		v = store.Document(m)
	}
	if len(parts) == 1 {
		dst[parts[0]] = store.CloneValue(v)
		return
	}
	switch t := v.(type) {
	case store.Document:
		sub, ok := dst[parts[0]].(store.Document)
		if !ok {
			sub = store.Document{}
			dst[parts[0]] = sub
		}
		projectInto(sub, t, parts[1:])
	case []any:
		existing, ok := dst[parts[0]].([]any)
		if !ok || len(existing) != len(t) {
			existing = make([]any, len(t))
			for i := range existing {
				existing[i] = store.Document{}
			}
			dst[parts[0]] = existing
		}
		for i, el := range t {
			var m store.Document
			switch elt := el.(type) {
			case store.Document:
				m = elt
			case map[string]any:
				m = store.Document(elt)
			default:
				continue
			}
			projectInto(existing[i].(store.Document), m, parts[1:])
		}
	}
}
