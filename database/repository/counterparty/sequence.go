package counterpartyRepo

import (
	"context"
	"fmt"
	"time"

	"qartelbot/database"
	"qartelbot/models"

	"go.mongodb.org/mongo-driver/bson"
)

// AddContract stores c under its number. A taken number yields ErrSequenceConflict;
// callers recompute the number and retry.
func (r *MongoCounterpartyRepo) AddContract(ctx context.Context, id string, c models.Contract) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	filter := bson.M{"id": id, "contracts.number": bson.M{"$ne": c.Number}}
	ok, err := r.push(ctx, filter, "contracts", c)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if _, err := r.findOne(ctx, id, withoutFiles); err != nil {
		return err
	}
	return fmt.Errorf("contract #%d for counterparty %s: %w", c.Number, id, ErrSequenceConflict)
}

// AddAppendix stores a under its number. It fails with ErrNoContract when the
// counterparty has no contracts and with ErrSequenceConflict when the number is taken.
func (r *MongoCounterpartyRepo) AddAppendix(ctx context.Context, id string, a models.Appendix) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	filter := bson.M{
		"id":                id,
		"contracts.0":       bson.M{"$exists": true},
		"appendices.number": bson.M{"$ne": a.Number},
	}
	ok, err := r.push(ctx, filter, "appendices", a)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	c, err := r.findOne(ctx, id, withoutFiles)
	if err != nil {
		return err
	}
	if len(c.Contracts) == 0 {
		return fmt.Errorf("appendix for counterparty %s: %w", id, ErrNoContract)
	}
	return fmt.Errorf("appendix #%d for counterparty %s: %w", a.Number, id, ErrSequenceConflict)
}

// push appends item to field when filter matches; false means the guard failed.
func (r *MongoCounterpartyRepo) push(ctx context.Context, filter bson.M, field string, item interface{}) (bool, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$push": bson.M{field: item},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to push into %s: %w", field, err)
	}
	return res.MatchedCount > 0, nil
}

// ReplaceContractFile swaps the document of an existing contract.
func (r *MongoCounterpartyRepo) ReplaceContractFile(ctx context.Context, id string, number int, file []byte) error {
	return r.replaceFile(ctx, id, "contracts", number, file)
}

// ReplaceAppendixFile swaps the document of an existing appendix.
func (r *MongoCounterpartyRepo) ReplaceAppendixFile(ctx context.Context, id string, number int, file []byte) error {
	return r.replaceFile(ctx, id, "appendices", number, file)
}

func (r *MongoCounterpartyRepo) replaceFile(ctx context.Context, id, field string, number int, file []byte) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, field + ".number": number}
	update := bson.M{"$set": bson.M{
		field + ".$.file":      file,
		field + ".$.createdAt": time.Now(),
		"updatedAt":            time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to replace %s #%d of %s: %w", field, number, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s #%d of %s: %w", field, number, id, database.ErrNotFound)
	}
	return nil
}

// DeleteContract removes a contract by number. Remaining numbers are kept.
func (r *MongoCounterpartyRepo) DeleteContract(ctx context.Context, id string, number int) error {
	return r.pull(ctx, id, "contracts", number)
}

// DeleteAppendix removes an appendix by number. Remaining numbers are kept.
func (r *MongoCounterpartyRepo) DeleteAppendix(ctx context.Context, id string, number int) error {
	return r.pull(ctx, id, "appendices", number)
}

func (r *MongoCounterpartyRepo) pull(ctx context.Context, id, field string, number int) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, field + ".number": number}
	update := bson.M{
		"$pull": bson.M{field: bson.M{"number": number}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to delete %s #%d of %s: %w", field, number, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s #%d of %s: %w", field, number, id, database.ErrNotFound)
	}
	return nil
}
