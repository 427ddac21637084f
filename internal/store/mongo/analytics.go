package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

type snapshotDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	models.Snapshot `bson:",inline"`
}

// snapshotUpsert increments the counters of a day's snapshot, creating it with
// zero metrics on first use.
func snapshotUpsert(key models.SnapshotKey, d models.MetricDelta, now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{
			"metrics.visitors":    d.Visitors,
			"metrics.pageViews":   d.PageViews,
			"metrics.conversions": d.Conversions,
			"metrics.revenue":     d.Revenue,
		},
		"$setOnInsert": bson.M{
			"user":                       key.UserID,
			"createdAt":                  now,
			"metrics.bounceRate":         0.0,
			"metrics.avgSessionDuration": 0.0,
		},
		"$set": bson.M{"updatedAt": now},
	}
}

// sessionMeanPipeline moves the running session mean halfway toward duration.
func sessionMeanPipeline(duration float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "metrics.avgSessionDuration", Value: bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$metrics.avgSessionDuration", 0}}, duration}},
				2,
			}}},
		}}},
	}
}

func (s *Store) ApplySnapshotEvent(ctx context.Context, key models.SnapshotKey, d models.MetricDelta) error {
	filter := bson.M{"funnel": key.FunnelID, "day": key.Day}
	now := s.now().UTC()

	_, err := s.snapshots().UpdateOne(ctx, filter, snapshotUpsert(key, d, now), options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert analytics snapshot: %w", err)
	}
	if d.SessionDuration == nil {
		return nil
	}

	// The document exists now; the mean update is a single-document pipeline write.
	if _, err := s.snapshots().UpdateOne(ctx, filter, sessionMeanPipeline(*d.SessionDuration)); err != nil {
		return fmt.Errorf("update session duration: %w", err)
	}
	return nil
}

func (s *Store) ApplyBreakdown(ctx context.Context, key models.SnapshotKey, d models.BreakdownDelta) error {
	filter := bson.M{"funnel": key.FunnelID, "day": key.Day, "dimension": d.Dimension, "key": d.Key}
	update := bson.M{"$inc": bson.M{"visitors": d.Visitors, "conversions": d.Conversions}}

	if _, err := s.breakdowns().UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert analytics breakdown: %w", err)
	}
	return nil
}

func snapshotQuery(q store.SnapshotQuery) bson.M {
	filter := bson.M{}
	if q.UserID != "" {
		filter["user"] = q.UserID
	}
	if q.FunnelID != "" {
		filter["funnel"] = q.FunnelID
	}
	dayRange(filter, q.From, q.To)
	return filter
}

func (s *Store) ListSnapshots(ctx context.Context, q store.SnapshotQuery) ([]models.Snapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "funnel", Value: 1}})
	cursor, err := s.snapshots().Find(ctx, snapshotQuery(q), opts)
	if err != nil {
		return nil, fmt.Errorf("list analytics snapshots: %w", err)
	}

	var docs []snapshotDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode analytics snapshots: %w", err)
	}
	snapshots := make([]models.Snapshot, 0, len(docs))
	for _, doc := range docs {
		snap := doc.Snapshot
		snap.ID = doc.ID.Hex()
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func (s *Store) ListBreakdowns(ctx context.Context, funnelID, from, to string) ([]models.BreakdownCount, error) {
	filter := bson.M{"funnel": funnelID}
	dayRange(filter, from, to)

	opts := options.Find().SetSort(bson.D{{Key: "day", Value: 1}, {Key: "dimension", Value: 1}, {Key: "key", Value: 1}})
	cursor, err := s.breakdowns().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list analytics breakdowns: %w", err)
	}
	counts := make([]models.BreakdownCount, 0)
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("decode analytics breakdowns: %w", err)
	}
	return counts, nil
}
