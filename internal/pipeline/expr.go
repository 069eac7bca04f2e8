package pipeline

import (
	"gotube/internal/store"
)

type ExprOp string

const (
	OpCount      ExprOp = "count"
	OpSum        ExprOp = "sum"
	OpFirst      ExprOp = "first"
	OpContainsID ExprOp = "containsId"
	OpField      ExprOp = "field"
)

// Expr computes a value from a single document.
type Expr struct {
	Op   ExprOp
	Path string
	ID   string
}

// Count is the length of the array at path; missing counts as zero.
func Count(path string) Expr { return Expr{Op: OpCount, Path: path} }

// Sum adds every number found at path, walking through arrays.
func Sum(path string) Expr { return Expr{Op: OpSum, Path: path} }

// First is the first element of the array at path, or nil.
func First(path string) Expr { return Expr{Op: OpFirst, Path: path} }

// ContainsID is true when id appears among the values at path. An empty id
// (anonymous viewer) is never contained.
func ContainsID(path, id string) Expr { return Expr{Op: OpContainsID, Path: path, ID: id} }

// Field copies the value at path.
func Field(path string) Expr { return Expr{Op: OpField, Path: path} }

func (e Expr) valid() bool {
	switch e.Op {
	case OpCount, OpSum, OpFirst, OpContainsID, OpField:
		return e.Path != ""
	}
	return false
}

func (e Expr) eval(doc store.Document) any {
	v := doc.Get(e.Path)
	switch e.Op {
	case OpCount:
		arr, ok := v.([]any)
		if !ok {
			if v == nil {
				return int64(0)
			}
			return int64(1)
		}
		return int64(len(arr))
	case OpSum:
		var total int64
		var ftotal float64
		isFloat := false
		for _, el := range store.Values(v) {
			switch n := el.(type) {
			case float64:
				isFloat = true
				ftotal += n
			case float32:
				isFloat = true
				ftotal += float64(n)
			default:
				if i, ok := store.ToInt64(n); ok {
					total += i
				}
			}
		}
		if isFloat {
			return ftotal + float64(total)
		}
		return total
	case OpFirst:
		arr, ok := v.([]any)
		if !ok {
			return v
		}
		if len(arr) == 0 {
			return nil
		}
		return arr[0]
	case OpContainsID:
		if e.ID == "" {
			return false
		}
		for _, el := range store.Values(v) {
			if s, ok := el.(string); ok && s == e.ID {
				return true
			}
		}
		return false
	default:
		return store.Normalize(v)
	}
}
