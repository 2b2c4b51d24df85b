// File: database/repository/counterparty/counterparty_mongo.go
package counterpartyRepo

import (
	"context"
	"fmt"
	"time"

	"qartelbot/database"
	"qartelbot/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoCounterpartyRepo implements CounterpartyRepository using MongoDB.
type MongoCounterpartyRepo struct {
	coll *mongo.Collection
}

// NewMongoCounterpartyRepo creates a new CounterpartyRepository using MongoDB.
func NewMongoCounterpartyRepo() CounterpartyRepository {
	repo := &MongoCounterpartyRepo{coll: database.DB().Collection("counterparties")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("counterparties: failed to create indexes", zap.Error(err))
	}
	return repo
}

func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoCounterpartyRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new counterparty with empty contract and appendix lists.
func (r *MongoCounterpartyRepo) Create(ctx context.Context, c *models.Counterparty) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Contracts == nil {
		c.Contracts = []models.Contract{}
	}
	if c.Appendices == nil {
		c.Appendices = []models.Appendix{}
	}

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to create counterparty: %w", err)
	}
	return nil
}

// GetByID retrieves a counterparty with all embedded files.
func (r *MongoCounterpartyRepo) GetByID(ctx context.Context, id string) (*models.Counterparty, error) {
	return r.findOne(ctx, id, nil)
}

// List returns every counterparty sorted by name, without file blobs.
func (r *MongoCounterpartyRepo) List(ctx context.Context) ([]models.Counterparty, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetProjection(withoutFiles).
		SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve counterparties: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Counterparty
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode counterparties: %w", err)
	}
	return out, nil
}

var withoutFiles = bson.M{"contracts.file": 0, "appendices.file": 0}

func (r *MongoCounterpartyRepo) findOne(ctx context.Context, id string, projection bson.M) (*models.Counterparty, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var c models.Counterparty
	if err := r.coll.FindOne(ctx, bson.M{"id": id}, opts).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("counterparty %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch counterparty %s: %w", id, err)
	}
	return &c, nil
}
