package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"social-content/db"
	"social-content/models"
)

type TagRepository struct {
	col *mongo.Collection
}

func NewTagRepository(d *mongo.Database) *TagRepository {
	return &TagRepository{col: d.Collection(db.CollectionTags)}
}

// FindByIDs returns the tags that exist among ids.
func (r *TagRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var tags []models.Tag
	if err := cur.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}
