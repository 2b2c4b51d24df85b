package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const TypePurgeProjectAssets = "project:purge-assets"

// PurgePayload names the storage folder to empty.
type PurgePayload struct {
	ProjectID string `json:"projectId"`
	Prefix    string `json:"prefix"`
}

func NewPurgeTask(payload PurgePayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypePurgeProjectAssets, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(2 * time.Minute),
	}
	return task, opts, nil
}

// Enqueuer is the part of *asynq.Client the queue purger uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueuePurger schedules asset purges on the task queue.
type QueuePurger struct {
	client Enqueuer
}

func NewQueuePurger(client Enqueuer) *QueuePurger {
	return &QueuePurger{client: client}
}

// PurgeProjectAssets enqueues removal of everything under prefix.
func (p *QueuePurger) PurgeProjectAssets(ctx context.Context, projectID, prefix string) error {
	task, opts, err := NewPurgeTask(PurgePayload{ProjectID: projectID, Prefix: prefix})
	if err != nil {
		return fmt.Errorf("tasks: build purge task: %w", err)
	}
	if _, err := p.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("tasks: enqueue purge of %s: %w", prefix, err)
	}
	return nil
}

// Deleter removes stored assets by prefix.
type Deleter interface {
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// InlinePurger deletes assets immediately when no queue is configured.
type InlinePurger struct {
	storage Deleter
}

func NewInlinePurger(storage Deleter) *InlinePurger {
	return &InlinePurger{storage: storage}
}

func (p *InlinePurger) PurgeProjectAssets(ctx context.Context, _ string, prefix string) error {
	return p.storage.DeleteByPrefix(ctx, prefix)
}

// HandlePurgeTask returns the worker handler for TypePurgeProjectAssets.
func HandlePurgeTask(storage Deleter) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p PurgePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			// A malformed payload will never succeed.
			return fmt.Errorf("tasks: invalid purge payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.Prefix == "" {
			return fmt.Errorf("tasks: empty purge prefix: %w", asynq.SkipRetry)
		}
		return storage.DeleteByPrefix(ctx, p.Prefix)
	}
}
