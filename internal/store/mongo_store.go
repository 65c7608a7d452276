package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/World_Chronicle/pkg/logger"
	"github.com/avast/retry-go/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	readAttempts = 3
	readDelay    = 50 * time.Millisecond
)

// MongoStore implements Store on a single MongoDB collection per table.
// Documents carry the pk/sk pair plus flat attributes; secondary indexes are
// ordinary compound indexes over the index attribute pairs. Multi-item writes
// run inside a session transaction, so they require a replica-set deployment.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps db as a Store.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// EnsureIndexes creates the key and secondary indexes for table. Safe to call
// on every startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context, table string) error {
	unique := true
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: AttrPK, Value: 1}, {Key: AttrSK, Value: 1}},
			Options: &options.IndexOptions{Unique: &unique},
		},
		{Keys: bson.D{{Key: AttrTimelinePK, Value: 1}, {Key: AttrTimelineSK, Value: -1}}},
		{Keys: bson.D{{Key: AttrOwnerPK, Value: 1}, {Key: AttrOwnerSK, Value: 1}}},
		{Keys: bson.D{{Key: AttrPendingPK, Value: 1}, {Key: AttrPendingSK, Value: 1}}},
	}
	_, err := s.db.Collection(table).Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Log.WithError(err).WithField("table", table).Error("Failed to create store indexes")
		return fmt.Errorf("failed to create indexes: %v", err)
	}
	return nil
}

// GetItem reads one item. Transient read failures are retried a bounded
// number of times; absence is not retried.
func (s *MongoStore) GetItem(ctx context.Context, table string, key Key) (Item, error) {
	var item Item
	err := retry.Do(
		func() error {
			var doc bson.M
			err := s.db.Collection(table).FindOne(ctx, keyFilter(key)).Decode(&doc)
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrItemNotFound
			}
			if err != nil {
				return err
			}
			item = fromDocument(doc)
			return nil
		},
		retry.Attempts(readAttempts),
		retry.Delay(readDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return !errors.Is(err, ErrItemNotFound) }),
	)
	return item, err
}

func (s *MongoStore) PutItem(ctx context.Context, table string, item Item) error {
	upsert := true
	_, err := s.db.Collection(table).ReplaceOne(
		ctx,
		keyFilter(ItemKey(item)),
		toDocument(item),
		&options.ReplaceOptions{Upsert: &upsert},
	)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to put item")
		return fmt.Errorf("failed to put item: %v", err)
	}
	return nil
}

// UpdateItem folds the condition attributes into the query filter so the
// check-and-set is a single atomic document operation.
func (s *MongoStore) UpdateItem(ctx context.Context, table string, key Key, set Item, cond Item) (Item, error) {
	filter := keyFilter(key)
	for attr, value := range cond {
		filter[attr] = value
	}

	after := options.After
	var doc bson.M
	err := s.db.Collection(table).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": toDocument(set)},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if cond == nil {
			return nil, ErrItemNotFound
		}
		// Distinguish a missing item from a failed condition.
		n, countErr := s.db.Collection(table).CountDocuments(ctx, keyFilter(key))
		if countErr == nil && n > 0 {
			return nil, ErrConditionFailed
		}
		return nil, ErrItemNotFound
	}
	if err != nil {
		logger.Log.WithError(err).Error("Failed to update item")
		return nil, fmt.Errorf("failed to update item: %v", err)
	}
	return fromDocument(doc), nil
}

func (s *MongoStore) Query(ctx context.Context, table string, q Query) ([]Item, error) {
	pkAttr, skAttr, ok := indexAttrs(q.Index)
	if !ok {
		return nil, ErrUnknownIndex
	}

	order := 1
	if q.Descending {
		order = -1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: skAttr, Value: order}})
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	var items []Item
	err := retry.Do(
		func() error {
			cursor, err := s.db.Collection(table).Find(ctx, bson.M{pkAttr: q.Partition}, findOptions)
			if err != nil {
				return err
			}
			defer cursor.Close(ctx)

			items = items[:0]
			for cursor.Next(ctx) {
				var doc bson.M
				if err := cursor.Decode(&doc); err != nil {
					return err
				}
				items = append(items, fromDocument(doc))
			}
			return cursor.Err()
		},
		retry.Attempts(readAttempts),
		retry.Delay(readDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		logger.Log.WithError(err).WithField("partition", q.Partition).Error("Failed to query items")
		return nil, fmt.Errorf("failed to query items: %v", err)
	}
	return items, nil
}

// TransactWrite runs every write in one session transaction. Failures are
// surfaced to the caller untouched; partial application cannot be ruled out
// by a blind retry, so none is attempted here.
func (s *MongoStore) TransactWrite(ctx context.Context, table string, writes []Write) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		coll := s.db.Collection(table)
		for _, w := range writes {
			if w.Put != nil {
				upsert := true
				if _, err := coll.ReplaceOne(sc, keyFilter(ItemKey(w.Put)), toDocument(w.Put), &options.ReplaceOptions{Upsert: &upsert}); err != nil {
					return nil, err
				}
				continue
			}
			if w.Update != nil {
				result, err := coll.UpdateOne(sc, keyFilter(*w.Update), bson.M{"$set": toDocument(w.Set)})
				if err != nil {
					return nil, err
				}
				if result.MatchedCount == 0 {
					return nil, ErrItemNotFound
				}
			}
		}
		return nil, nil
	})
	if err != nil {
		logger.Log.WithError(err).Error("Transactional write failed")
		return err
	}
	return nil
}

func keyFilter(key Key) bson.M {
	return bson.M{AttrPK: key.PK, AttrSK: key.SK}
}

func toDocument(item Item) bson.M {
	doc := make(bson.M, len(item))
	for attr, value := range item {
		doc[attr] = value
	}
	return doc
}

func fromDocument(doc bson.M) Item {
	item := make(Item, len(doc))
	for attr, value := range doc {
		if attr == "_id" {
			continue
		}
		// Mongo decodes lists as primitive.A; normalize to []string.
		if list, ok := value.(primitive.A); ok {
			out := make([]string, 0, len(list))
			for _, e := range list {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
			item[attr] = out
			continue
		}
		item[attr] = value
	}
	return item
}
