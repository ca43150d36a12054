package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"social-content/db"
	"social-content/models"
)

type LinkPreviewRepository struct {
	col *mongo.Collection
}

func NewLinkPreviewRepository(d *mongo.Database) *LinkPreviewRepository {
	return &LinkPreviewRepository{col: d.Collection(db.CollectionLinkPreviews)}
}

// FindByURL returns nil, nil when the URL is unknown.
func (r *LinkPreviewRepository) FindByURL(ctx context.Context, url string) (*models.LinkPreview, error) {
	var lp models.LinkPreview
	if err := r.col.FindOne(ctx, bson.M{"url": url}).Decode(&lp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &lp, nil
}

func (r *LinkPreviewRepository) Create(ctx context.Context, lp *models.LinkPreview) error {
	now := time.Now()
	if lp.CreatedAt.IsZero() {
		lp.CreatedAt = now
	}
	lp.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, lp)
	return err
}

// Update sets the metadata fields of an existing preview.
func (r *LinkPreviewRepository) Update(ctx context.Context, lp *models.LinkPreview) error {
	lp.UpdatedAt = time.Now()
	_, err := r.col.UpdateByID(ctx, lp.ID, bson.M{
		"$set": bson.M{
			"domain":      lp.Domain,
			"image":       lp.Image,
			"title":       lp.Title,
			"description": lp.Description,
			"updated_at":  lp.UpdatedAt,
		},
	})
	return err
}
