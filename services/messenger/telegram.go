package messenger

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Telegram limits bots to about 30 outbound requests per second.
const (
	sendRate  = 25
	sendBurst = 5
	albumMax  = 10
)

// BotAPI is the subset of *tgbotapi.BotAPI the messenger uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	SendMediaGroup(config tgbotapi.MediaGroupConfig) ([]tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// TelegramMessenger implements MessengerService on the Bot API.
type TelegramMessenger struct {
	bot     BotAPI
	limiter *rate.Limiter
	logger  *zap.Logger
}

func NewTelegramMessenger(bot BotAPI, logger *zap.Logger) *TelegramMessenger {
	return &TelegramMessenger{
		bot:     bot,
		limiter: rate.NewLimiter(rate.Limit(sendRate), sendBurst),
		logger:  logger,
	}
}

func (m *TelegramMessenger) Send(ctx context.Context, msg Message) (int, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	cfg := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if msg.Markdown {
		cfg.ParseMode = tgbotapi.ModeMarkdown
	}
	if len(msg.Keyboard) > 0 {
		cfg.ReplyMarkup = inlineMarkup(msg.Keyboard)
	}
	sent, err := m.bot.Send(cfg)
	if err != nil {
		return 0, fmt.Errorf("messenger: send to %d: %w", msg.ChatID, err)
	}
	return sent.MessageID, nil
}

func (m *TelegramMessenger) SendDocument(ctx context.Context, chatID int64, name string, data []byte) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	cfg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := m.bot.Send(cfg); err != nil {
		return fmt.Errorf("messenger: send document %q to %d: %w", name, chatID, err)
	}
	return nil
}

// SendPhotos splits urls into albums of at most ten. A lone photo is sent
// on its own because albums need two or more items.
func (m *TelegramMessenger) SendPhotos(ctx context.Context, chatID int64, urls []string, caption string) error {
	for start := 0; start < len(urls); start += albumMax {
		end := start + albumMax
		if end > len(urls) {
			end = len(urls)
		}
		chunk := urls[start:end]
		text := ""
		if start == 0 {
			text = caption
		}
		if err := m.limiter.Wait(ctx); err != nil {
			return err
		}

		if len(chunk) == 1 {
			cfg := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(chunk[0]))
			cfg.Caption = text
			if _, err := m.bot.Send(cfg); err != nil {
				return fmt.Errorf("messenger: send photo to %d: %w", chatID, err)
			}
			continue
		}

		media := make([]interface{}, 0, len(chunk))
		for i, u := range chunk {
			photo := tgbotapi.NewInputMediaPhoto(tgbotapi.FileURL(u))
			if i == 0 {
				photo.Caption = text
			}
			media = append(media, photo)
		}
		if _, err := m.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, media)); err != nil {
			return fmt.Errorf("messenger: send album to %d: %w", chatID, err)
		}
	}
	return nil
}

func (m *TelegramMessenger) ClearButtons(ctx context.Context, chatID int64, messageID int) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if _, err := m.bot.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)); err != nil {
		return fmt.Errorf("messenger: clear buttons of %d/%d: %w", chatID, messageID, err)
	}
	return nil
}

func (m *TelegramMessenger) Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := m.bot.Send(tgbotapi.NewForward(toChatID, fromChatID, messageID)); err != nil {
		return fmt.Errorf("messenger: forward %d/%d to %d: %w", fromChatID, messageID, toChatID, err)
	}
	return nil
}

func (m *TelegramMessenger) FileURL(_ context.Context, fileID string) (string, error) {
	url, err := m.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("messenger: resolve file %s: %w", fileID, err)
	}
	return url, nil
}

// AnswerCallback stops the client's loading indicator. Failures are only logged.
func (m *TelegramMessenger) AnswerCallback(_ context.Context, callbackID, text string) error {
	if callbackID == "" {
		return nil
	}
	if _, err := m.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		m.logger.Debug("answer callback failed", zap.String("callback_id", callbackID), zap.Error(err))
		return err
	}
	return nil
}

func inlineMarkup(kb Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Text, b.URL))
			} else {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
