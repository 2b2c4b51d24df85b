package handlers

import (
	"context"
	"sync"

	"qartelbot/services/conversation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// EventHandler consumes transport-independent chat events.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev conversation.Event) error
}

// EventFromUpdate converts a Telegram update. Updates the bot does not act
// on (edits, channel posts, inline queries) report false.
func EventFromUpdate(u tgbotapi.Update) (conversation.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		ev := conversation.Event{
			Kind:       conversation.KindCallback,
			Data:       q.Data,
			CallbackID: q.ID,
		}
		if q.From != nil {
			ev.SenderID, ev.Username, ev.FirstName = q.From.ID, q.From.UserName, q.From.FirstName
		}
		if q.Message == nil || q.Message.Chat == nil {
			return conversation.Event{}, false
		}
		ev.ChatID = q.Message.Chat.ID
		ev.MessageID = q.Message.MessageID
		return ev, true

	case u.Message != nil:
		m := u.Message
		if m.Chat == nil {
			return conversation.Event{}, false
		}
		ev := conversation.Event{
			ChatID:    m.Chat.ID,
			MessageID: m.MessageID,
		}
		if m.From != nil {
			ev.SenderID, ev.Username, ev.FirstName = m.From.ID, m.From.UserName, m.From.FirstName
		}
		switch {
		case m.Document != nil:
			ev.Kind = conversation.KindDocument
			ev.File = &conversation.File{ID: m.Document.FileID, Name: m.Document.FileName, MIME: m.Document.MimeType}
		case len(m.Photo) > 0:
			ev.Kind = conversation.KindPhoto
			ev.File = &conversation.File{ID: largestPhoto(m.Photo).FileID}
		case m.Text != "":
			ev.Kind = conversation.KindText
			ev.Text = m.Text
		default:
			return conversation.Event{}, false
		}
		return ev, true
	}
	return conversation.Event{}, false
}

func largestPhoto(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}

// Dispatcher fans updates out to a fixed set of workers. All events of one
// chat land on the same worker, so they are handled in arrival order.
type Dispatcher struct {
	handler EventHandler
	queues  []chan conversation.Event
	logger  *zap.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(handler EventHandler, workers, buffer int, logger *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	queues := make([]chan conversation.Event, workers)
	for i := range queues {
		queues[i] = make(chan conversation.Event, buffer)
	}
	return &Dispatcher{handler: handler, queues: queues, logger: logger}
}

// Start launches the workers. Stop must be called to release them.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, q := range d.queues {
		d.wg.Add(1)
		go d.work(ctx, i, q)
	}
}

func (d *Dispatcher) work(ctx context.Context, id int, q <-chan conversation.Event) {
	defer d.wg.Done()
	for ev := range q {
		if err := d.handler.HandleEvent(ctx, ev); err != nil {
			d.logger.Error("event handling failed",
				zap.Int("worker", id),
				zap.Int64("chat_id", ev.ChatID),
				zap.String("kind", ev.Kind.String()),
				zap.Error(err),
			)
		}
	}
}

// Dispatch queues an update for its chat's worker. It reports false for
// updates that carry no event or when ctx ends before the queue has room.
func (d *Dispatcher) Dispatch(ctx context.Context, u tgbotapi.Update) bool {
	ev, ok := EventFromUpdate(u)
	if !ok {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	q := d.queues[shard(ev.ChatID, len(d.queues))]
	select {
	case q <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// Poll dispatches long-polled updates until the channel closes or ctx ends.
func (d *Dispatcher) Poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			d.Dispatch(ctx, u)
		}
	}
}

// Stop closes the queues and waits for queued events to finish. Cancel the
// context passed to Dispatch first so blocked callers give up.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()
	for _, q := range d.queues {
		close(q)
	}
	d.wg.Wait()
}

func shard(chatID int64, n int) int {
	return int(uint64(chatID) % uint64(n))
}
