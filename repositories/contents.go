package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-content/db"
	"social-content/models"
)

type ContentRepository struct {
	col *mongo.Collection
}

func NewContentRepository(d *mongo.Database) *ContentRepository {
	return &ContentRepository{col: d.Collection(db.CollectionContents)}
}

// FindByID returns models.ErrContentNotFound when no document matches.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.Content, error) {
	var state models.ContentState
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&state); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrContentNotFound
		}
		return nil, err
	}
	return models.LoadContent(state)
}

// FindByIDs skips ids that do not exist.
func (r *ContentRepository) FindByIDs(ctx context.Context, ids []string) ([]*models.Content, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Content
	for cur.Next(ctx) {
		var state models.ContentState
		if err := cur.Decode(&state); err != nil {
			return nil, err
		}
		c, err := models.LoadContent(state)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, cur.Err()
}

func (r *ContentRepository) Create(ctx context.Context, c *models.Content) error {
	_, err := r.col.InsertOne(ctx, c.State())
	return err
}

// Update replaces the whole document keyed by id.
func (r *ContentRepository) Update(ctx context.Context, c *models.Content) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID()}, c.State(), opts)
	return err
}

// Delete removes the content and every series membership pointing at it, in
// either direction.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return err
	}
	if _, err := r.col.UpdateMany(ctx,
		bson.M{"items.id": id},
		bson.M{"$pull": bson.M{"items": bson.M{"id": id}}},
	); err != nil {
		return err
	}
	_, err := r.col.UpdateMany(ctx,
		bson.M{"series_ids": id},
		bson.M{"$pull": bson.M{"series_ids": id}},
	)
	return err
}

// UpdateFields sets the same fields on every listed content.
func (r *ContentRepository) UpdateFields(ctx context.Context, ids []string, fields map[string]any) error {
	if len(ids) == 0 || len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	if _, err := r.col.UpdateMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, bson.M{"$set": set}); err != nil {
		return fmt.Errorf("update fields %v: %w", ids, err)
	}
	return nil
}
