// Package mongo implements store.Store on MongoDB. Funnels embed their steps and
// settings as subdocuments; daily snapshots are upserted against a unique
// (funnel, day) index.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/seuros/jogo/internal/logging"
	"github.com/seuros/jogo/internal/store"
)

const (
	funnelsCollection    = "funnels"
	templatesCollection  = "templates"
	usersCollection      = "users"
	snapshotsCollection  = "analytics"
	breakdownsCollection = "analytics_breakdowns"
)

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

var _ store.Store = (*Store)(nil)

// Connect dials uri, verifies the connection and ensures indexes on database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongodb connection URI is empty")
	}
	if database == "" {
		return nil, errors.New("mongodb database name is empty")
	}

	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetConnectTimeout(5 * time.Second).
		SetSocketTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &Store{client: client, db: client.Database(database), now: time.Now}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logging.L().Info("connected to MongoDB", zap.String("database", database))
	return s, nil
}

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		funnelsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "updatedAt", Value: -1}}},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "stats.conversionRate", Value: -1}}},
		},
		snapshotsCollection: {
			{
				Keys:    bson.D{{Key: "funnel", Value: 1}, {Key: "day", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("funnel_day_unique"),
			},
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "day", Value: 1}}},
		},
		breakdownsCollection: {
			{
				Keys: bson.D{
					{Key: "funnel", Value: 1}, {Key: "day", Value: 1},
					{Key: "dimension", Value: 1}, {Key: "key", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		templatesCollection: {
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "featured", Value: -1}, {Key: "downloads", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
	}

	for collection, specs := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		logging.L().Error("failed to disconnect MongoDB client", zap.Error(err))
		return err
	}
	return nil
}

func (s *Store) funnels() *mongo.Collection    { return s.db.Collection(funnelsCollection) }
func (s *Store) templates() *mongo.Collection  { return s.db.Collection(templatesCollection) }
func (s *Store) users() *mongo.Collection      { return s.db.Collection(usersCollection) }
func (s *Store) snapshots() *mongo.Collection  { return s.db.Collection(snapshotsCollection) }
func (s *Store) breakdowns() *mongo.Collection { return s.db.Collection(breakdownsCollection) }

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	return err
}

func containsPattern(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

func findPage(offset, limit int) *options.FindOptions {
	opts := options.Find().SetSkip(int64(offset))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

// dayRange adds an inclusive day-key range to filter.
func dayRange(filter bson.M, from, to string) {
	if from == "" && to == "" {
		return
	}
	cond := bson.M{}
	if from != "" {
		cond["$gte"] = from
	}
	if to != "" {
		cond["$lte"] = to
	}
	filter["day"] = cond
}
