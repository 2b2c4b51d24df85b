package trustRepo

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestNextNumber(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("latest plus one", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "number", Value: 5}}))

		repo := &mongoTrustRepo{coll: mt.Coll}
		n, err := repo.NextNumber(context.Background())
		if err != nil {
			mt.Fatalf("next number: %v", err)
		}
		if n != 6 {
			mt.Fatalf("next number: got %d, want 6", n)
		}

		started := mt.GetStartedEvent()
		if started == nil || started.CommandName != "find" {
			mt.Fatalf("started event: %+v", started)
		}
		elems, err := started.Command.Lookup("sort").Document().Elements()
		if err != nil {
			mt.Fatalf("sort: %v", err)
		}
		var keys []string
		for _, e := range elems {
			keys = append(keys, e.Key())
		}
		if len(keys) != 2 || keys[0] != "createdAt" || keys[1] != "number" {
			mt.Fatalf("sort keys: %v", keys)
		}
	})

	mt.Run("empty collection starts at one", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		repo := &mongoTrustRepo{coll: mt.Coll}
		n, err := repo.NextNumber(context.Background())
		if err != nil {
			mt.Fatalf("next number: %v", err)
		}
		if n != 1 {
			mt.Fatalf("next number: got %d, want 1", n)
		}
	})
}
