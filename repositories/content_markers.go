package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-content/db"
)

// ContentMarkerRepository records per-user seen and read-important marks.
// Both writes are upserts on (content_id, user_id), so repeating them is safe.
type ContentMarkerRepository struct {
	seen      *mongo.Collection
	important *mongo.Collection
}

func NewContentMarkerRepository(d *mongo.Database) *ContentMarkerRepository {
	return &ContentMarkerRepository{
		seen:      d.Collection(db.CollectionUsersSeenContents),
		important: d.Collection(db.CollectionReadImportant),
	}
}

func (r *ContentMarkerRepository) MarkSeen(ctx context.Context, contentID, userID string) error {
	return upsertMark(ctx, r.seen, contentID, userID)
}

func (r *ContentMarkerRepository) MarkReadImportant(ctx context.Context, contentID, userID string) error {
	return upsertMark(ctx, r.important, contentID, userID)
}

func upsertMark(ctx context.Context, col *mongo.Collection, contentID, userID string) error {
	filter := bson.M{"content_id": contentID, "user_id": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"content_id": contentID,
			"user_id":    userID,
			"created_at": time.Now(),
		},
	}
	_, err := col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
