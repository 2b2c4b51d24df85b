package projectRepo

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

type mongoProjectRepo struct {
	coll *mongo.Collection
}

// NewMongoProjectRepo returns a ProjectRepository backed by MongoDB.
func NewMongoProjectRepo() ProjectRepository {
	repo := &mongoProjectRepo{coll: database.DB().Collection("projects")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		zap.L().Warn("projects: failed to create indexes", zap.Error(err))
	}
	return repo
}

func (r *mongoProjectRepo) Create(ctx context.Context, p *models.Project) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = time.Now()
	if p.Photos == nil {
		p.Photos = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *mongoProjectRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p models.Project
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("project %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch project %s: %w", id, err)
	}
	return &p, nil
}

func (r *mongoProjectRepo) List(ctx context.Context) ([]models.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve projects: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.Project
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return out, nil
}

// Delete removes a project by id.
func (r *mongoProjectRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete project %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("project %s: %w", id, database.ErrNotFound)
	}
	return nil
}
