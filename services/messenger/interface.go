package messenger

import "context"

// Button is an inline keyboard button. Exactly one of Data and URL is set.
type Button struct {
	Text string
	Data string
	URL  string
}

// Keyboard is a grid of inline buttons, one slice per row.
type Keyboard [][]Button

// Row is a convenience for building a keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// DataButton returns a callback button.
func DataButton(text, data string) Button {
	return Button{Text: text, Data: data}
}

// URLButton returns a link button.
func URLButton(text, url string) Button {
	return Button{Text: text, URL: url}
}

// Message is an outbound text message.
type Message struct {
	ChatID   int64
	Text     string
	Markdown bool
	Keyboard Keyboard
}

// MessengerService defines the chat operations the bot performs.
type MessengerService interface {
	// Send delivers a text message and returns its message id.
	Send(ctx context.Context, msg Message) (int, error)
	SendDocument(ctx context.Context, chatID int64, name string, data []byte) error
	// SendPhotos sends photo URLs as albums; caption goes under the first photo.
	SendPhotos(ctx context.Context, chatID int64, urls []string, caption string) error
	// ClearButtons removes the inline keyboard from a sent message.
	ClearButtons(ctx context.Context, chatID int64, messageID int) error
	Forward(ctx context.Context, toChatID, fromChatID int64, messageID int) error
	// FileURL resolves an uploaded file id to a downloadable URL.
	FileURL(ctx context.Context, fileID string) (string, error)
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
