package store

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

type Document map[string]any

func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

func (d Document) String(field string) string {
	s, _ := d.Get(field).(string)
	return s
}

func (d Document) Bool(field string) bool {
	b, _ := d.Get(field).(bool)
	return b
}

func (d Document) Int(field string) int64 {
	n, _ := ToInt64(d.Get(field))
	return n
}

// Get walks a dotted path through nested documents. When the walk meets an
// array it continues into every element and returns the collected values.
func (d Document) Get(path string) any {
	return walk(d, strings.Split(path, "."))
}

func walk(v any, parts []string) any {
	if len(parts) == 0 {
		return v
	}
	switch t := v.(type) {
	case Document:
		return walk(t[parts[0]], parts[1:])
	case map[string]any:
		return walk(t[parts[0]], parts[1:])
	case []any:
		out := make([]any, 0, len(t))
		for _, el := range t {
			r := walk(el, parts)
			if r == nil {
				continue
			}
			if arr, ok := r.([]any); ok {
				out = append(out, arr...)
			} else {
				out = append(out, r)
			}
		}
		return out
	default:
		return nil
	}
}

// Set writes value at a dotted path, creating intermediate documents.
func (d Document) Set(path string, value any) {
	parts := strings.Split(path, ".")
	cur := d
	for _, p := range parts[:len(parts)-1] {
		next, ok := asDocument(cur[p])
		if !ok {
			next = Document{}
		}
		cur[p] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func asDocument(v any) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, true
	case map[string]any:
		return Document(t), true
	}
	return nil, false
}

func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(d).(Document)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Document:
		out := make(Document, len(t))
		for k, el := range t {
			out[k] = cloneValue(el)
		}
		return out
	case map[string]any:
		return cloneValue(Document(t))
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = cloneValue(el)
		}
		return out
	default:
		return v
	}
}

// Values flattens v into a list: nil is empty, arrays are spread, scalars are wrapped.
func Values(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		return []any{v}
	}
}

// Normalize converts Go values into the canonical shapes documents hold:
// nested maps become Document, slices become []any, integers become int64.
func Normalize(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int64, float64, time.Time:
		return t
	case Document:
		out := make(Document, len(t))
		for k, el := range t {
			out[k] = Normalize(el)
		}
		return out
	case map[string]any:
		return Normalize(Document(t))
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Normalize(el)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = el
		}
		return out
	case []Document:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Normalize(el)
		}
		return out
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case float32:
		return float64(t)
	default:
		return v
	}
}

func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Equal compares scalar document values; numbers compare by value across types.
func Equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ra.Comparable() && rb.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int, int32, int64, float32, float64:
		return 1
	case string:
		return 2
	case Document, map[string]any:
		return 3
	case []any:
		return 4
	case bool:
		return 5
	case time.Time:
		return 6
	default:
		return 7
	}
}

// Compare orders values the way Mongo sorts mixed types.
func Compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 1:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 5:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case 6:
		return a.(time.Time).Compare(b.(time.Time))
	case 0:
		return 0
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// Key is a comparable representation of a scalar used to index join values.
func Key(v any) string {
	switch t := v.(type) {
	case string:
		return "s:" + t
	case nil:
		return "nil"
	}
	if f, ok := toFloat(v); ok {
		return fmt.Sprintf("n:%v", f)
	}
	return fmt.Sprintf("%T:%v", v, v)
}

// CloneValue deep-copies documents and arrays inside v.
func CloneValue(v any) any {
	return cloneValue(v)
}
