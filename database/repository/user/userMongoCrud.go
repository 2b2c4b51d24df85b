// File: database/repository/user/userMongoCrud.go
package userRepo

import (
	"context"
	"fmt"
	"time"

	"qartelbot/database"
	"qartelbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureUser inserts a visitor on first contact and returns the stored user.
func (r *MongoUserRepo) EnsureUser(ctx context.Context, id string) (*models.User, bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":        id,
			"role":      models.RoleVisitor,
			"createdAt": now,
			"updatedAt": now,
		},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user %s: %w", id, err)
	}
	created := res.UpsertedCount > 0

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user); err != nil {
		return nil, created, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, created, nil
}

// SetRole modifies the role of an existing user document.
func (r *MongoUserRepo) SetRole(ctx context.Context, id string, role models.Role) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	update := bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update user with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a user by chat id.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user with id %s: %w", id, err)
	}
	return &user, nil
}
