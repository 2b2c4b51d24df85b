package conversation

import "strings"

// EventKind is the shape of an inbound event.
type EventKind int

const (
	KindText EventKind = iota
	KindCallback
	KindDocument
	KindPhoto
)

func (k EventKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCallback:
		return "callback"
	case KindDocument:
		return "document"
	case KindPhoto:
		return "photo"
	}
	return "unknown"
}

// File references an uploaded document or photo.
type File struct {
	ID   string
	Name string
	MIME string
}

// Event is one inbound chat event, independent of the transport.
type Event struct {
	ChatID    int64
	SenderID  int64
	Username  string
	FirstName string
	// MessageID is the message the event came from; for callbacks, the message carrying the button.
	MessageID  int
	Kind       EventKind
	Text       string
	Data       string
	CallbackID string
	File       *File
}

// userID is the key of the sender's user record.
func (ev Event) userID() int64 {
	if ev.SenderID != 0 {
		return ev.SenderID
	}
	return ev.ChatID
}

// text returns the trimmed text of a text event.
func (ev Event) text() (string, bool) {
	if ev.Kind != KindText {
		return "", false
	}
	t := strings.TrimSpace(ev.Text)
	return t, t != ""
}

func (ev Event) isCommand(name string) bool {
	if ev.Kind != KindText {
		return false
	}
	fields := strings.Fields(ev.Text)
	if len(fields) == 0 {
		return false
	}
	cmd := fields[0]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return cmd == name
}
