// Package pipeline describes read views as data: a pipeline is a list of
// stages, and a join stage may carry its own sub-pipeline for the joined
// documents. The Executor runs pipelines against a store.Store.
package pipeline

import (
	"gotube/internal/store"
)

type Kind string

const (
	KindMatch   Kind = "match"
	KindSearch  Kind = "search"
	KindJoin    Kind = "join"
	KindUnwind  Kind = "unwind"
	KindDerive  Kind = "derive"
	KindSort    Kind = "sort"
	KindProject Kind = "project"
)

type Stage struct {
	Kind Kind

	Filter store.Filter // match
	Text   string       // search
	Join   *JoinSpec    // join

	Field string // unwind, derive
	Expr  Expr   // derive

	Sort   []SortKey // sort
	Fields []string  // project
}

// JoinSpec attaches, under As, every document of From whose ForeignField equals
// the local document's LocalField. Where narrows the joined documents and
// Pipeline runs over them before they are attached.
type JoinSpec struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
	Where        store.Filter
	Pipeline     []Stage
}

type SortKey struct {
	Field string
	Desc  bool
}

func Match(conds ...store.Condition) Stage {
	return Stage{Kind: KindMatch, Filter: store.Where(conds...)}
}

// Search is a full-text search; it may only open a pipeline.
func Search(text string) Stage {
	return Stage{Kind: KindSearch, Text: text}
}

func Join(spec JoinSpec) Stage {
	return Stage{Kind: KindJoin, Join: &spec}
}

func Unwind(field string) Stage {
	return Stage{Kind: KindUnwind, Field: field}
}

func Derive(field string, expr Expr) Stage {
	return Stage{Kind: KindDerive, Field: field, Expr: expr}
}

func Sort(keys ...SortKey) Stage {
	return Stage{Kind: KindSort, Sort: keys}
}

func Asc(field string) SortKey  { return SortKey{Field: field} }
func Desc(field string) SortKey { return SortKey{Field: field, Desc: true} }

// Project keeps _id and the listed dotted paths.
func Project(fields ...string) Stage {
	return Stage{Kind: KindProject, Fields: fields}
}

// changesMembership reports whether the stage decides which documents are
// in the result (or their order), as opposed to only reshaping them.
func (s Stage) changesMembership() bool {
	switch s.Kind {
	case KindMatch, KindSearch, KindUnwind, KindSort:
		return true
	}
	return false
}
