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

var catalogueSort = bson.D{
	{Key: "featured", Value: -1},
	{Key: "downloads", Value: -1},
	{Key: "createdAt", Value: -1},
}

func templateQuery(filter store.TemplateFilter) bson.M {
	query := bson.M{"isActive": true}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Difficulty != "" {
		query["difficulty"] = filter.Difficulty
	}
	if filter.FeaturedOnly {
		query["featured"] = true
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	return query
}

func (s *Store) CreateTemplate(ctx context.Context, t *models.Template) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	now := s.now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if _, err := s.templates().InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("insert template: %w", err)
	}
	return nil
}

func (s *Store) CountTemplates(ctx context.Context) (int64, error) {
	count, err := s.templates().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

func (s *Store) DeleteTemplates(ctx context.Context) error {
	if _, err := s.templates().DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("delete templates: %w", err)
	}
	return nil
}

func (s *Store) ListTemplates(ctx context.Context, filter store.TemplateFilter) ([]models.Template, int64, error) {
	query := templateQuery(filter)

	total, err := s.templates().CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count templates: %w", err)
	}

	cursor, err := s.templates().Find(ctx, query, findPage(filter.Offset, filter.Limit).SetSort(catalogueSort))
	if err != nil {
		return nil, 0, fmt.Errorf("list templates: %w", err)
	}
	templates := make([]models.Template, 0)
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, 0, fmt.Errorf("decode templates: %w", err)
	}
	return templates, total, nil
}

func (s *Store) TemplateCategories(ctx context.Context) ([]models.CategoryCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cursor, err := s.templates().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("template categories: %w", err)
	}
	categories := make([]models.CategoryCount, 0)
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("decode template categories: %w", err)
	}
	return categories, nil
}

func (s *Store) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	var t models.Template
	if err := s.templates().FindOne(ctx, bson.M{"_id": id, "isActive": true}).Decode(&t); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (s *Store) IncrementTemplateDownloads(ctx context.Context, id string) (*models.Template, error) {
	update := bson.M{
		"$inc": bson.M{"downloads": 1},
		"$set": bson.M{"updatedAt": s.now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var t models.Template
	err := s.templates().FindOneAndUpdate(ctx, bson.M{"_id": id, "isActive": true}, update, opts).Decode(&t)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}
