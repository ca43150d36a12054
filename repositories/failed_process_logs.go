package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-content/db"
	"social-content/models"
)

// FailedProcessLogRepository is the append-only dead-letter store for search
// writes.
type FailedProcessLogRepository struct {
	col *mongo.Collection
}

func NewFailedProcessLogRepository(d *mongo.Database) *FailedProcessLogRepository {
	return &FailedProcessLogRepository{col: d.Collection(db.CollectionFailedProcessLogs)}
}

func (r *FailedProcessLogRepository) Append(ctx context.Context, rec models.FailedProcessLog) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.col.InsertOne(ctx, rec)
	return err
}

// ListByContentID returns the newest records first, for replay tooling.
func (r *FailedProcessLogRepository) ListByContentID(ctx context.Context, contentID string, limit int64) ([]models.FailedProcessLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"content_id": contentID}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.FailedProcessLog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
