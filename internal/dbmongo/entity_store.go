package dbmongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"gotube/internal/store"
)

// EntityStore implements store.Store over one Mongo database, a collection
// per entity kind. Ids are stored as their hex strings.
type EntityStore struct {
	db     *mongo.Database
	logger *zap.Logger
	now    func() time.Time
}

var _ store.Store = (*EntityStore)(nil)

func NewEntityStore(mc *MongoClient, logger *zap.Logger) *EntityStore {
	return &EntityStore{
		db:     mc.Database,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// insertionOrder matches the store contract: createdAt, then _id.
var insertionOrder = bson.D{{Key: store.FieldCreatedAt, Value: 1}, {Key: store.FieldID, Value: 1}}

func (s *EntityStore) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{store.FieldID: id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromBSON(raw).(store.Document), nil
}

func (s *EntityStore) Find(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	opts := options.Find().SetSort(insertionOrder)
	if q.Text != "" {
		opts.SetProjection(bson.M{store.FieldScore: bson.M{"$meta": "textScore"}})
	}
	cur, err := s.db.Collection(collection).Find(ctx, queryDoc(q), opts)
	if err != nil {
		return nil, err
	}
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, err
	}
	out := make([]store.Document, 0, len(raws))
	for _, r := range raws {
		out = append(out, fromBSON(r).(store.Document))
	}
	return out, nil
}

func (s *EntityStore) Count(ctx context.Context, collection string, q store.Query) (int64, error) {
	return s.db.Collection(collection).CountDocuments(ctx, queryDoc(q))
}

func (s *EntityStore) Insert(ctx context.Context, collection string, doc store.Document) (store.Document, error) {
	d := store.Normalize(doc).(store.Document)
	if d.ID() == "" {
		d[store.FieldID] = store.NewID()
	}
	now := s.now()
	d[store.FieldCreatedAt] = now
	d[store.FieldUpdatedAt] = now

	if _, err := s.db.Collection(collection).InsertOne(ctx, d); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}
	return d.Clone(), nil
}

func (s *EntityStore) Update(ctx context.Context, collection, id string, u store.Update) error {
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{store.FieldID: id}, s.updateDoc(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *EntityStore) UpdateMany(ctx context.Context, collection string, f store.Filter, u store.Update) (int64, error) {
	res, err := s.db.Collection(collection).UpdateMany(ctx, filterDoc(f), s.updateDoc(u))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, store.ErrDuplicate
		}
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *EntityStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{store.FieldID: id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *EntityStore) DeleteMany(ctx context.Context, collection string, f store.Filter) (int64, error) {
	res, err := s.db.Collection(collection).DeleteMany(ctx, filterDoc(f))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *EntityStore) EnsureIndexes(ctx context.Context, collection string, indexes []store.Index) error {
	if len(indexes) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, 0, len(indexes))
	for _, idx := range indexes {
		models = append(models, indexModel(idx))
	}
	names, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	s.logger.Debug("indexes ensured", zap.String("collection", collection), zap.Strings("indexes", names))
	return nil
}

func (s *EntityStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func indexModel(idx store.Index) mongo.IndexModel {
	keys := make(bson.D, 0, len(idx.Fields))
	for _, f := range idx.Fields {
		var dir any = 1
		if idx.Text {
			dir = "text"
		}
		keys = append(keys, bson.E{Key: f, Value: dir})
	}
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(idx.Name).SetUnique(idx.Unique),
	}
}

func queryDoc(q store.Query) bson.M {
	f := filterDoc(q.Filter)
	if q.Text == "" {
		return f
	}
	text := bson.M{"$text": bson.M{"$search": q.Text}}
	if len(f) == 0 {
		return text
	}
	return bson.M{"$and": bson.A{text, f}}
}

// filterDoc translates a conjunction; each condition keeps its own clause so
// two conditions on the same field do not overwrite each other.
func filterDoc(f store.Filter) bson.M {
	switch len(f) {
	case 0:
		return bson.M{}
	case 1:
		return conditionDoc(f[0])
	}
	clauses := make(bson.A, 0, len(f))
	for _, c := range f {
		clauses = append(clauses, conditionDoc(c))
	}
	return bson.M{"$and": clauses}
}

func conditionDoc(c store.Condition) bson.M {
	switch c.Op {
	case store.OpIn:
		values := c.Values
		if values == nil {
			values = []any{}
		}
		return bson.M{c.Field: bson.M{"$in": values}}
	case store.OpOr:
		if len(c.Any) == 0 {
			// an empty disjunction matches nothing
			return bson.M{store.FieldID: bson.M{"$in": bson.A{}}}
		}
		alts := make(bson.A, 0, len(c.Any))
		for _, sub := range c.Any {
			alts = append(alts, filterDoc(sub))
		}
		return bson.M{"$or": alts}
	default:
		return bson.M{c.Field: c.Value}
	}
}

func (s *EntityStore) updateDoc(u store.Update) bson.M {
	set := bson.M{store.FieldUpdatedAt: s.now()}
	for k, v := range u.Set {
		set[k] = store.Normalize(v)
	}
	doc := bson.M{"$set": set}
	if len(u.Inc) > 0 {
		inc := bson.M{}
		for k, v := range u.Inc {
			inc[k] = v
		}
		doc["$inc"] = inc
	}
	if len(u.AddToSet) > 0 {
		add := bson.M{}
		for k, v := range u.AddToSet {
			add[k] = store.Normalize(v)
		}
		doc["$addToSet"] = add
	}
	if len(u.Pull) > 0 {
		pull := bson.M{}
		for k, v := range u.Pull {
			pull[k] = store.Normalize(v)
		}
		doc["$pull"] = pull
	}
	return doc
}

// fromBSON converts decoded driver values into canonical document shapes.
func fromBSON(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(store.Document, len(t))
		for k, el := range t {
			out[k] = fromBSON(el)
		}
		return out
	case map[string]any:
		return fromBSON(bson.M(t))
	case bson.D:
		out := make(store.Document, len(t))
		for _, e := range t {
			out[e.Key] = fromBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = fromBSON(el)
		}
		return out
	case []any:
		return fromBSON(bson.A(t))
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	default:
		return v
	}
}
