package store

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Op int

const (
	OpEq Op = iota
	OpIn
	OpOr
)

// Condition is one predicate of a Filter. Eq against an array field matches
// when any element is equal, the same way Mongo treats it.
type Condition struct {
	Field  string
	Op     Op
	Value  any
	Values []any
	Any    []Filter
	// IsID marks values that must be well-formed document ids
	IsID bool
}

// Filter is a conjunction of conditions; the empty filter matches everything.
type Filter []Condition

func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Value: value}
}

func EqID(field, id string) Condition {
	return Condition{Field: field, Op: OpEq, Value: id, IsID: true}
}

func In(field string, values []any) Condition {
	return Condition{Field: field, Op: OpIn, Values: values}
}

func InIDs(field string, ids []string) Condition {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return Condition{Field: field, Op: OpIn, Values: values, IsID: true}
}

func Or(filters ...Filter) Condition {
	return Condition{Op: OpOr, Any: filters}
}

func Where(conds ...Condition) Filter {
	return Filter(conds)
}

func (f Filter) And(conds ...Condition) Filter {
	out := make(Filter, 0, len(f)+len(conds))
	out = append(out, f...)
	return append(out, conds...)
}

// IsValidID reports whether id is a 24 character hex ObjectID.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// NewID returns a fresh document id.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// InvalidIDs returns every id-marked value in the filter that is not a valid id.
func (f Filter) InvalidIDs() []string {
	var bad []string
	for _, c := range f {
		switch {
		case c.Op == OpOr:
			for _, sub := range c.Any {
				bad = append(bad, sub.InvalidIDs()...)
			}
		case !c.IsID:
		case c.Op == OpEq:
			if s, ok := c.Value.(string); !ok || !IsValidID(s) {
				bad = append(bad, toString(c.Value))
			}
		case c.Op == OpIn:
			for _, v := range c.Values {
				if s, ok := v.(string); !ok || !IsValidID(s) {
					bad = append(bad, toString(v))
				}
			}
		}
	}
	return bad
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func (f Filter) Matches(doc Document) bool {
	for _, c := range f {
		if !c.matches(doc) {
			return false
		}
	}
	return true
}

func (c Condition) matches(doc Document) bool {
	switch c.Op {
	case OpOr:
		for _, sub := range c.Any {
			if sub.Matches(doc) {
				return true
			}
		}
		return false
	case OpIn:
		for _, want := range c.Values {
			if fieldEquals(doc, c.Field, want) {
				return true
			}
		}
		return false
	default:
		return fieldEquals(doc, c.Field, c.Value)
	}
}

func fieldEquals(doc Document, field string, want any) bool {
	got := doc.Get(field)
	if want == nil {
		return got == nil
	}
	for _, v := range Values(got) {
		if Equal(v, want) {
			return true
		}
	}
	return false
}
