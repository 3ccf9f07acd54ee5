package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps each collection as a MongoDB collection. Identifiers are
// UUID strings stored in _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

func NewMongoStore(ctx context.Context, uri, name string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to reach mongodb: %w", err)
	}

	return newMongoStore(client, name), nil
}

func newMongoStore(client *mongo.Client, name string) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(name),
		now:    time.Now,
	}
}

// RunMigrations creates the indexes the deal listing queries rely on.
func (m *MongoStore) RunMigrations(ctx context.Context) error {
	_, err := m.db.Collection(DealCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "property_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create deal indexes: %w", err)
	}
	return nil
}

func (m *MongoStore) Store(ctx context.Context, collection string, rec Record) (string, error) {
	id := uuid.NewString()
	rec.Stamp(id, m.now().UTC())

	if _, err := m.db.Collection(collection).InsertOne(ctx, rec); err != nil {
		return "", fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return id, nil
}

func (m *MongoStore) Fetch(ctx context.Context, collection string, filter Filter, limit int, out interface{}) error {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := m.db.Collection(collection).Find(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (m *MongoStore) Get(ctx context.Context, collection, id string, out interface{}) error {
	err := m.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", collection, id, err)
	}
	return nil
}

func (m *MongoStore) Replace(ctx context.Context, collection, id string, rec Record) error {
	rec.Touch(m.now().UTC())

	result, err := m.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, rec)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", collection, id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}
