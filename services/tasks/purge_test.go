package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

type fakeDeleter struct {
	prefixes []string
	err      error
}

func (f *fakeDeleter) DeleteByPrefix(_ context.Context, prefix string) error {
	f.prefixes = append(f.prefixes, prefix)
	return f.err
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestQueuePurgerEnqueuesPayload(t *testing.T) {
	q := &fakeEnqueuer{}
	if err := NewQueuePurger(q).PurgeProjectAssets(context.Background(), "p1", "projects/Дом"); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if len(q.tasks) != 1 || q.tasks[0].Type() != TypePurgeProjectAssets {
		t.Fatalf("tasks: %+v", q.tasks)
	}
	var p PurgePayload
	if err := json.Unmarshal(q.tasks[0].Payload(), &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.ProjectID != "p1" || p.Prefix != "projects/Дом" {
		t.Fatalf("payload: %+v", p)
	}
}

func TestHandlePurgeTask(t *testing.T) {
	d := &fakeDeleter{}
	task, _, err := NewPurgeTask(PurgePayload{Prefix: "projects/Дом"})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := HandlePurgeTask(d)(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(d.prefixes) != 1 || d.prefixes[0] != "projects/Дом" {
		t.Fatalf("deleted: %v", d.prefixes)
	}
}

func TestHandlePurgeTaskSkipsBadPayload(t *testing.T) {
	err := HandlePurgeTask(&fakeDeleter{})(context.Background(), asynq.NewTask(TypePurgeProjectAssets, []byte("{")))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestInlinePurger(t *testing.T) {
	d := &fakeDeleter{err: errors.New("boom")}
	if err := NewInlinePurger(d).PurgeProjectAssets(context.Background(), "p1", "projects/x"); err == nil {
		t.Fatal("expected storage error")
	}
}
