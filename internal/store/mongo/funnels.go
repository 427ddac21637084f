package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/seuros/jogo/internal/models"
	"github.com/seuros/jogo/internal/store"
)

func funnelQuery(filter store.FunnelFilter) bson.M {
	query := bson.M{"user": filter.UserID}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

// statsPipeline adds d to the totals and then recomputes the conversion rate
// from the updated totals, all in one document update.
func statsPipeline(d models.FunnelDelta, now any) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "stats.visitors", Value: bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$stats.visitors", 0}}, d.Visitors}}},
			{Key: "stats.conversions", Value: bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$stats.conversions", 0}}, d.Conversions}}},
			{Key: "stats.revenue", Value: bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$stats.revenue", 0}}, d.Revenue}}},
			{Key: "updatedAt", Value: now},
		}}},
		{{Key: "$set", Value: bson.D{
			{Key: "stats.conversionRate", Value: bson.M{"$cond": bson.A{
				bson.M{"$gt": bson.A{"$stats.visitors", 0}},
				bson.M{"$multiply": bson.A{bson.M{"$divide": bson.A{"$stats.conversions", "$stats.visitors"}}, 100}},
				0,
			}}},
		}}},
	}
}

func (s *Store) CreateFunnel(ctx context.Context, f *models.Funnel) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = models.FunnelDraft
	}
	if f.Steps == nil {
		f.Steps = []models.Step{}
	}
	now := s.now().UTC()
	f.CreatedAt, f.UpdatedAt = now, now

	if _, err := s.funnels().InsertOne(ctx, f); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert funnel: %w", err)
	}
	return nil
}

func (s *Store) GetFunnel(ctx context.Context, id string) (*models.Funnel, error) {
	var f models.Funnel
	if err := s.funnels().FindOne(ctx, bson.M{"_id": id}).Decode(&f); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) GetOwnedFunnel(ctx context.Context, id, userID string) (*models.Funnel, error) {
	var f models.Funnel
	if err := s.funnels().FindOne(ctx, bson.M{"_id": id, "user": userID}).Decode(&f); err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (s *Store) ListFunnels(ctx context.Context, filter store.FunnelFilter) ([]models.Funnel, int64, error) {
	query := funnelQuery(filter)

	total, err := s.funnels().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count funnels: %w", err)
	}

	opts := findPage(filter.Offset, filter.Limit).SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.funnels().Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list funnels: %w", err)
	}
	funnels := make([]models.Funnel, 0)
	if err := cursor.All(ctx, &funnels); err != nil {
		return nil, 0, fmt.Errorf("decode funnels: %w", err)
	}
	return funnels, total, nil
}

func (s *Store) UpdateFunnel(ctx context.Context, f *models.Funnel) error {
	set := bson.M{
		"name":        f.Name,
		"description": f.Description,
		"steps":       f.Steps,
		"status":      f.Status,
		"settings":    f.Settings,
		"isPublished": f.IsPublished,
		"updatedAt":   s.now().UTC(),
	}
	update := bson.M{"$set": set}
	if f.PublishedAt != nil {
		set["publishedAt"] = *f.PublishedAt
	} else {
		update["$unset"] = bson.M{"publishedAt": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Funnel
	err := s.funnels().FindOneAndUpdate(ctx, bson.M{"_id": f.ID, "user": f.UserID}, update, opts).Decode(&updated)
	if err != nil {
		return notFound(err)
	}
	*f = updated
	return nil
}

func (s *Store) DeleteFunnel(ctx context.Context, id, userID string) error {
	result, err := s.funnels().DeleteOne(ctx, bson.M{"_id": id, "user": userID})
	if err != nil {
		return fmt.Errorf("delete funnel: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementFunnelStats(ctx context.Context, id string, d models.FunnelDelta) error {
	result, err := s.funnels().UpdateOne(ctx, bson.M{"_id": id}, statsPipeline(d, s.now().UTC()))
	if err != nil {
		return fmt.Errorf("increment funnel stats: %w", err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) TopFunnels(ctx context.Context, userID string, limit int) ([]models.Funnel, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "stats.conversionRate", Value: -1}, {Key: "createdAt", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := s.funnels().Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("top funnels: %w", err)
	}
	funnels := make([]models.Funnel, 0, limit)
	if err := cursor.All(ctx, &funnels); err != nil {
		return nil, fmt.Errorf("decode top funnels: %w", err)
	}
	return funnels, nil
}

func (s *Store) CountFunnelsByStatus(ctx context.Context, userID string) (map[models.FunnelStatus]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user": userID}}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.funnels().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count funnels by status: %w", err)
	}

	var groups []struct {
		Status models.FunnelStatus `bson:"_id"`
		Count  int64               `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode status counts: %w", err)
	}

	counts := make(map[models.FunnelStatus]int64, len(groups))
	for _, g := range groups {
		counts[g.Status] = g.Count
	}
	return counts, nil
}
