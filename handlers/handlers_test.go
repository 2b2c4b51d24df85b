package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"qartelbot/services/conversation"
	"qartelbot/utils"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func TestEventFromUpdate(t *testing.T) {
	from := &tgbotapi.User{ID: 7, UserName: "artem", FirstName: "Артем"}
	chat := &tgbotapi.Chat{ID: 7}

	tests := []struct {
		name   string
		update tgbotapi.Update
		ok     bool
		check  func(t *testing.T, ev conversation.Event)
	}{
		{
			name:   "text",
			update: tgbotapi.Update{Message: &tgbotapi.Message{MessageID: 1, From: from, Chat: chat, Text: "/start"}},
			ok:     true,
			check: func(t *testing.T, ev conversation.Event) {
				if ev.Kind != conversation.KindText || ev.Text != "/start" || ev.Username != "artem" || ev.SenderID != 7 {
					t.Fatalf("got %+v", ev)
				}
			},
		},
		{
			name: "document",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat, Document: &tgbotapi.Document{
				FileID: "f1", FileName: "смета.xlsx", MimeType: "application/vnd.ms-excel",
			}}},
			ok: true,
			check: func(t *testing.T, ev conversation.Event) {
				if ev.Kind != conversation.KindDocument || ev.File.ID != "f1" || ev.File.MIME != "application/vnd.ms-excel" {
					t.Fatalf("got %+v", ev)
				}
			},
		},
		{
			name: "photo picks largest size",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat, Photo: []tgbotapi.PhotoSize{
				{FileID: "small", Width: 90, Height: 90},
				{FileID: "large", Width: 1280, Height: 960},
				{FileID: "medium", Width: 320, Height: 240},
			}}},
			ok: true,
			check: func(t *testing.T, ev conversation.Event) {
				if ev.Kind != conversation.KindPhoto || ev.File.ID != "large" {
					t.Fatalf("got %+v", ev)
				}
			},
		},
		{
			name: "callback",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID: "cb", From: from, Data: "cp:view:abc",
				Message: &tgbotapi.Message{MessageID: 55, Chat: chat},
			}},
			ok: true,
			check: func(t *testing.T, ev conversation.Event) {
				if ev.Kind != conversation.KindCallback || ev.Data != "cp:view:abc" || ev.MessageID != 55 || ev.CallbackID != "cb" {
					t.Fatalf("got %+v", ev)
				}
			},
		},
		{
			name:   "sticker ignored",
			update: tgbotapi.Update{Message: &tgbotapi.Message{From: from, Chat: chat, Sticker: &tgbotapi.Sticker{FileID: "s"}}},
		},
		{
			name:   "edited message ignored",
			update: tgbotapi.Update{EditedMessage: &tgbotapi.Message{From: from, Chat: chat, Text: "x"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := EventFromUpdate(tt.update)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok {
				if ev.ChatID != 7 {
					t.Fatalf("chat id: %d", ev.ChatID)
				}
				tt.check(t, ev)
			}
		})
	}
}

type recordingHandler struct {
	mu     sync.Mutex
	byChat map[int64][]string
}

func (h *recordingHandler) HandleEvent(_ context.Context, ev conversation.Event) error {
	time.Sleep(time.Millisecond)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.byChat[ev.ChatID] = append(h.byChat[ev.ChatID], ev.Text)
	return nil
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}, Text: text}}
}

func TestDispatcherKeepsPerChatOrder(t *testing.T) {
	h := &recordingHandler{byChat: map[int64][]string{}}
	d := NewDispatcher(h, 4, 16, zap.NewNop())
	ctx := context.Background()
	d.Start(ctx)

	chats := []int64{1, 2, -1001234567890, 5}
	for i := 0; i < 10; i++ {
		for _, chat := range chats {
			d.Dispatch(ctx, textUpdate(chat, string(rune('a'+i))))
		}
	}
	d.Stop()

	for _, chat := range chats {
		if got := strings.Join(h.byChat[chat], ""); got != "abcdefghij" {
			t.Fatalf("chat %d order: %q", chat, got)
		}
	}
}

func TestDispatcherSkipsUnsupportedUpdates(t *testing.T) {
	d := NewDispatcher(&recordingHandler{byChat: map[int64][]string{}}, 1, 1, zap.NewNop())
	if d.Dispatch(context.Background(), tgbotapi.Update{}) {
		t.Fatal("empty update dispatched")
	}
}

type captureSink struct {
	updates []tgbotapi.Update
}

func (s *captureSink) Dispatch(_ context.Context, u tgbotapi.Update) bool {
	s.updates = append(s.updates, u)
	return true
}

func TestWebhookHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sink := &captureSink{}
	h := NewWebhookHandler(context.Background(), sink, "s3cret", zap.NewNop())
	r := gin.New()
	r.POST("/telegram/webhook", h.ReceiveUpdate)

	post := func(token, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set(secretTokenHeader, token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	body := `{"update_id": 10, "message": {"message_id": 3, "chat": {"id": 42, "type": "private"}, "text": "/start"}}`
	if code := post("wrong", body); code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", code)
	}
	if code := post("s3cret", "{not json"); code != http.StatusBadRequest {
		t.Fatalf("bad body: %d", code)
	}
	if code := post("s3cret", body); code != http.StatusOK {
		t.Fatalf("valid update: %d", code)
	}
	if len(sink.updates) != 1 || sink.updates[0].Message.Chat.ID != 42 {
		t.Fatalf("sink: %+v", sink.updates)
	}
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	status := utils.HealthStatus{Mongo: true, Redis: []bool{true}}
	r := gin.New()
	r.GET("/health", HealthHandler(func() utils.HealthStatus { return status }))

	get := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		return w.Code
	}
	if code := get(); code != http.StatusOK {
		t.Fatalf("healthy: %d", code)
	}
	status.Redis = []bool{false}
	if code := get(); code != http.StatusServiceUnavailable {
		t.Fatalf("degraded: %d", code)
	}
}
