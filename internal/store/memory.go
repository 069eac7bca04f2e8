package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"
)

type memCollection struct {
	docs    []Document
	indexes []Index
}

// MemoryStore is a process-local Store with the same uniqueness and text
// search behavior as the Mongo store. It backs tests and local runs.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memCollection
	now         func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) { m.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		collections: make(map[string]*memCollection),
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MemoryStore) coll(name string) *memCollection {
	c, ok := m.collections[name]
	if !ok {
		c = &memCollection{}
		m.collections[name] = c
	}
	return c
}

// lookup never creates the collection; safe under the read lock.
func (m *MemoryStore) lookup(name string) *memCollection {
	if c, ok := m.collections[name]; ok {
		return c
	}
	return &memCollection{}
}

func (c *memCollection) indexOf(id string) int {
	for i, d := range c.docs {
		if d.ID() == id {
			return i
		}
	}
	return -1
}

func (m *MemoryStore) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := m.lookup(collection)
	i := c.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return c.docs[i].Clone(), nil
}

func (m *MemoryStore) Find(_ context.Context, collection string, q Query) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.find(collection, q)
}

func (m *MemoryStore) find(collection string, q Query) ([]Document, error) {
	c := m.lookup(collection)
	var textFields []string
	if q.Text != "" {
		for _, idx := range c.indexes {
			if idx.Text {
				textFields = idx.Fields
			}
		}
		if textFields == nil {
			return nil, fmt.Errorf("text search on %s: no text index", collection)
		}
	}
	terms := tokenize(q.Text)

	out := make([]Document, 0)
	for _, d := range c.docs {
		if !q.Filter.Matches(d) {
			continue
		}
		if q.Text == "" {
			out = append(out, d.Clone())
			continue
		}
		score := textScore(d, textFields, terms)
		if score == 0 {
			continue
		}
		clone := d.Clone()
		clone[FieldScore] = score
		out = append(out, clone)
	}
	return out, nil
}

func (m *MemoryStore) Count(ctx context.Context, collection string, q Query) (int64, error) {
	docs, err := m.Find(ctx, collection, q)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (m *MemoryStore) Insert(_ context.Context, collection string, doc Document) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)

	d := Normalize(doc).(Document)
	if d.ID() == "" {
		d[FieldID] = NewID()
	} else if c.indexOf(d.ID()) >= 0 {
		return nil, ErrDuplicate
	}
	now := m.now()
	d[FieldCreatedAt] = now
	d[FieldUpdatedAt] = now

	if c.violatesUnique(d, "") {
		return nil, ErrDuplicate
	}
	c.docs = append(c.docs, d)
	return d.Clone(), nil
}

func (c *memCollection) violatesUnique(d Document, skipID string) bool {
	for _, idx := range c.indexes {
		if !idx.Unique {
			continue
		}
		for _, other := range c.docs {
			if skipID != "" && other.ID() == skipID {
				continue
			}
			same := true
			for _, f := range idx.Fields {
				if !Equal(other.Get(f), d.Get(f)) {
					same = false
					break
				}
			}
			if same {
				return true
			}
		}
	}
	return false
}

func (m *MemoryStore) Update(_ context.Context, collection, id string, u Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	i := c.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	updated := c.docs[i].Clone()
	m.apply(updated, u)
	if c.violatesUnique(updated, id) {
		return ErrDuplicate
	}
	c.docs[i] = updated
	return nil
}

func (m *MemoryStore) UpdateMany(_ context.Context, collection string, f Filter, u Update) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	var n int64
	for i, d := range c.docs {
		if !f.Matches(d) {
			continue
		}
		updated := d.Clone()
		m.apply(updated, u)
		if c.violatesUnique(updated, d.ID()) {
			return n, ErrDuplicate
		}
		c.docs[i] = updated
		n++
	}
	return n, nil
}

func (m *MemoryStore) apply(d Document, u Update) {
	for k, v := range u.Set {
		d.Set(k, Normalize(v))
	}
	for k, delta := range u.Inc {
		cur, _ := ToInt64(d.Get(k))
		d.Set(k, cur+delta)
	}
	for k, v := range u.AddToSet {
		v = Normalize(v)
		arr, _ := d.Get(k).([]any)
		present := false
		for _, el := range arr {
			if Equal(el, v) {
				present = true
				break
			}
		}
		if !present {
			arr = append(append([]any{}, arr...), v)
		}
		d.Set(k, arr)
	}
	for k, v := range u.Pull {
		arr, ok := d.Get(k).([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(arr))
		for _, el := range arr {
			if !Equal(el, v) {
				kept = append(kept, el)
			}
		}
		d.Set(k, kept)
	}
	d[FieldUpdatedAt] = m.now()
}

func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	i := c.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	c.docs = append(c.docs[:i], c.docs[i+1:]...)
	return nil
}

func (m *MemoryStore) DeleteMany(_ context.Context, collection string, f Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	kept := c.docs[:0]
	var n int64
	for _, d := range c.docs {
		if f.Matches(d) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return n, nil
}

func (m *MemoryStore) EnsureIndexes(_ context.Context, collection string, indexes []Index) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.coll(collection)
	for _, idx := range indexes {
		replaced := false
		for i, existing := range c.indexes {
			if existing.Name == idx.Name {
				c.indexes[i] = idx
				replaced = true
			}
		}
		if !replaced {
			c.indexes = append(c.indexes, idx)
		}
	}
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func textScore(d Document, fields, terms []string) float64 {
	want := make(map[string]bool, len(terms))
	for _, t := range terms {
		want[t] = true
	}
	var score float64
	for _, f := range fields {
		s, _ := d.Get(f).(string)
		for _, tok := range tokenize(s) {
			if want[tok] {
				score++
			}
		}
	}
	return score
}
