package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

const collectionMessages = "messages"

type MessageRepository struct {
	col *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{col: db.Collection(collectionMessages)}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m domain.Message
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &m, nil
}

// ListForUser returns the messages userID sent or received, oldest first.
func (r *MessageRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"recipient_id": userID},
	}}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	var out []*domain.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"is_read": true, "updated_at": time.Now().UTC()}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "is_read": false}, update)
	if err != nil {
		return fmt.Errorf("mark message read: %w", err)
	}
	if res.MatchedCount == 0 {
		// Already read is fine; only a missing document is an error.
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return fmt.Errorf("mark message read: %w", err)
		}
		if n == 0 {
			return domain.ErrMessageNotFound
		}
	}
	return nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMessageNotFound
	}
	return nil
}

// EnsureIndexes creates indexes on the messages collection.
func (r *MessageRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
