package trustRepo

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

type mongoTrustRepo struct {
	coll *mongo.Collection
}

// NewMongoTrustRepo returns a TrustRepository backed by MongoDB.
func NewMongoTrustRepo() TrustRepository {
	repo := &mongoTrustRepo{coll: database.DB().Collection("trust_documents")}
	if err := repo.ensureIndexes(); err != nil {
		zap.L().Warn("trust_documents: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoTrustRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "number", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// NextNumber looks at creation order, not count, so gaps are tolerated.
// Documents created in the same millisecond are ordered by number.
func (r *mongoTrustRepo) NextNumber(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "number", Value: -1}}).
		SetProjection(bson.M{"number": 1})
	var latest models.TrustDocument
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&latest)
	if err == mongo.ErrNoDocuments {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find latest trust document: %w", err)
	}
	return latest.Number + 1, nil
}

// Create inserts doc, assigning an id and creation time.
func (r *mongoTrustRepo) Create(ctx context.Context, doc *models.TrustDocument) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("trust document #%d: %w", doc.Number, ErrNumberTaken)
		}
		return fmt.Errorf("failed to create trust document: %w", err)
	}
	return nil
}

func (r *mongoTrustRepo) GetByID(ctx context.Context, id string) (*models.TrustDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc models.TrustDocument
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("trust document %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch trust document %s: %w", id, err)
	}
	return &doc, nil
}

func (r *mongoTrustRepo) List(ctx context.Context) ([]models.TrustDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetProjection(bson.M{"file": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "number", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve trust documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []models.TrustDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode trust documents: %w", err)
	}
	return docs, nil
}
