package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anonto42/nano-gallery/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps each collection in a MongoDB collection of the same name.
// Live queries re-run the query on every change stream event, so the server
// must be a replica set (also required for multi-document transactions).
type MongoStore struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongoStore creates a MongoStore on db.
func NewMongoStore(db *mongo.Database, logger *slog.Logger) *MongoStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoStore{db: db, logger: logger}
}

// EnsureIndexes creates the (imageId, createdAt) index on every collection.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	for _, c := range []models.Collection{models.CollectionReactions, models.CollectionComments, models.CollectionFeedEvents} {
		_, err := s.db.Collection(string(c)).Indexes().CreateMany(ctx, []mongo.IndexModel{
			{Keys: bson.D{{Key: "imageId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		})
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", c, err)
		}
	}
	return nil
}

// Subscribe implements Store.
func (s *MongoStore) Subscribe(ctx context.Context, q Query, fn Listener) (Unsubscribe, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	sub := newSubscription(ctx, q, fn)
	go s.watch(sub)
	return sub.unsubscribe(), nil
}

func (s *MongoStore) watch(sub *subscription) {
	coll := s.db.Collection(string(sub.query.Collection))

	// Open the stream before the first read so no change falls in between.
	stream, err := coll.Watch(sub.ctx, mongo.Pipeline{}, options.ChangeStream())
	if err != nil {
		s.fail(sub, err)
		return
	}
	defer stream.Close(context.Background())

	var version uint64
	load := func() bool {
		records, err := s.load(sub.ctx, sub.query)
		if err != nil {
			s.fail(sub, err)
			return false
		}
		version++
		sub.deliver(version, Snapshot{Records: records})
		return true
	}

	if !load() {
		return
	}
	for stream.Next(sub.ctx) {
		if !load() {
			return
		}
	}
	if err := stream.Err(); err != nil {
		s.fail(sub, err)
	}
}

func (s *MongoStore) load(ctx context.Context, q Query) ([]models.Record, error) {
	filter := bson.M{}
	if q.ID != "" {
		filter["_id"] = q.ID
	}
	if q.ImageID != "" {
		filter["imageId"] = q.ImageID
	}
	findOptions := options.Find()
	if q.NewestFirst {
		findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := s.db.Collection(string(q.Collection)).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.Record
	for cursor.Next(ctx) {
		rec := models.NewRecord(q.Collection)
		if err := cursor.Decode(rec); err != nil {
			s.logger.Warn("skipping undecodable document", "collection", q.Collection, "error", err)
			continue
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *MongoStore) fail(sub *subscription, err error) {
	if sub.ctx.Err() != nil {
		return
	}
	s.logger.Error("mongo change stream failed", "collection", sub.query.Collection, "error", err)
	sub.deliver(0, Snapshot{Err: fmt.Errorf("mongo %s: %w", sub.query.Collection, err)})
}

// Transact implements Store.
func (s *MongoStore) Transact(ctx context.Context, ops []Op) error {
	if err := validateOps(ops); err != nil {
		return err
	}
	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("mongo transact: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for i, op := range ops {
			coll := s.db.Collection(string(op.Collection))
			var err error
			switch op.Kind {
			case OpCreate:
				_, err = coll.InsertOne(sc, op.Record)
				if mongo.IsDuplicateKeyError(err) {
					err = fmt.Errorf("%w: %v", ErrConflict, err)
				}
			case OpUpdate:
				_, err = coll.ReplaceOne(sc, bson.M{"_id": op.ID}, op.Record, options.Replace().SetUpsert(true))
			case OpDelete:
				_, err = coll.DeleteOne(sc, bson.M{"_id": op.ID})
			}
			if err != nil {
				return nil, fmt.Errorf("op %d (%s %s/%s): %w", i, op.Kind, op.Collection, op.ID, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("mongo transact: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
