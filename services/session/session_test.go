package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"qartelbot/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, 1); err != nil || ok {
		t.Fatalf("get empty: ok=%v err=%v", ok, err)
	}

	sess := &models.Session{
		Step:           models.StepAppendixPeriod,
		CounterpartyID: "cp-1",
		Appendix: &models.AppendixDraft{
			Items: []models.LineItem{{Description: "Монтаж", Kind: "Услуга", Quantity: "1", Amount: decimal.NewFromInt(1000)}},
			Total: decimal.NewFromInt(1200),
			VAT:   decimal.NewFromInt(200),
		},
	}
	if err := store.Set(ctx, 1, sess); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, 2, &models.Session{Step: models.StepTrustName}); err != nil {
		t.Fatalf("set other chat: %v", err)
	}

	got, ok, err := store.Get(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.Step != models.StepAppendixPeriod || got.CounterpartyID != "cp-1" {
		t.Fatalf("got %+v", got)
	}
	if len(got.Appendix.Items) != 1 || !got.Appendix.VAT.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("appendix draft: got %+v", got.Appendix)
	}

	// Mutating the returned value must not leak into the store.
	got.Step = models.StepAppendixAddress
	again, _, _ := store.Get(ctx, 1)
	if again.Step != models.StepAppendixPeriod {
		t.Fatalf("store mutated through returned pointer: %s", again.Step)
	}

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, 1); ok {
		t.Fatal("session survived delete")
	}
	if _, ok, _ := store.Get(ctx, 2); !ok {
		t.Fatal("other chat lost its session")
	}
	if err := store.Delete(ctx, 42); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	exerciseStore(t, NewRedisStore(client, time.Hour))

	if !mr.Exists("conv:chat:2") {
		t.Fatal("expected key conv:chat:2")
	}
	if ttl := mr.TTL("conv:chat:2"); ttl != time.Hour {
		t.Fatalf("ttl: got %s", ttl)
	}
}

func TestRedisStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := mr.Set("conv:chat:7", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, _, err := NewRedisStore(client, 0).Get(context.Background(), 7); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock(5)
			defer unlock()

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("concurrent holders: %d", maxSeen)
	}
	if n := km.Len(); n != 0 {
		t.Fatalf("entries left: %d", n)
	}
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()
	unlockA := km.Lock(1)
	done := make(chan struct{})
	go func() {
		unlock := km.Lock(2)
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on key 2 blocked by key 1")
	}
	unlockA()
	unlockA()
	if n := km.Len(); n != 0 {
		t.Fatalf("entries left: %d", n)
	}
}
