package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

const collectionActivity = "activity_logs"

// ActivityRepository is the append-only audit trail. Entries are never
// updated or deleted.
type ActivityRepository struct {
	col *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) *ActivityRepository {
	return &ActivityRepository{col: db.Collection(collectionActivity)}
}

func (r *ActivityRepository) Append(ctx context.Context, e *domain.ActivityLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List returns entries newest first, optionally restricted to one actor.
func (r *ActivityRepository) List(ctx context.Context, actorID string) ([]*domain.ActivityLogEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if actorID != "" {
		filter["actor_id"] = actorID
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}

	var out []*domain.ActivityLogEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	return out, nil
}

// EnsureIndexes creates indexes on the activity collection.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
