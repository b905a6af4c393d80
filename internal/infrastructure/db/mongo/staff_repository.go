package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/doomzday403/admin-console/internal/core/domain"
)

const collectionStaff = "staff"

// caseInsensitive makes username and email lookups and uniqueness ignore case.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type StaffRepository struct {
	col *mongo.Collection
}

func NewStaffRepository(db *mongo.Database) *StaffRepository {
	return &StaffRepository{col: db.Collection(collectionStaff)}
}

// List returns the roster ordered by creation time.
func (r *StaffRepository) List(ctx context.Context) ([]*domain.StaffMember, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	var out []*domain.StaffMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode staff: %w", err)
	}
	return out, nil
}

func (r *StaffRepository) FindByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *StaffRepository) FindByUsername(ctx context.Context, username string) (*domain.StaffMember, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *StaffRepository) FindByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *StaffRepository) findOne(ctx context.Context, filter bson.M) (*domain.StaffMember, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m domain.StaffMember
	err := r.col.FindOne(ctx, filter, options.FindOne().SetCollation(caseInsensitive)).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStaffNotFound
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return &m, nil
}

func (r *StaffRepository) Create(ctx context.Context, m *domain.StaffMember) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrStaffExists
		}
		return fmt.Errorf("insert staff: %w", err)
	}
	return nil
}

func (r *StaffRepository) Update(ctx context.Context, m *domain.StaffMember) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrStaffExists
		}
		return fmt.Errorf("update staff: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrStaffNotFound
	}
	return nil
}

// EnsureIndexes creates the unique username and email indexes.
func (r *StaffRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
		},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
