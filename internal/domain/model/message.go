package model

import "time"

// MessageKind tells the router whether an update carries text or media.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindImage    MessageKind = "image"
	KindVoice    MessageKind = "voice"
	KindVideo    MessageKind = "video"
	KindDocument MessageKind = "document"
	KindAudio    MessageKind = "audio"
)

// IncomingMessage is the transient view of one Telegram update.
// It is built once per inbound event and discarded after processing.
type IncomingMessage struct {
	SenderID int64
	ChatID   int64
	Username string
	Kind     MessageKind
	Text     string
	MediaRef string // Telegram file ID when Kind is not text
}

// MessageLog is the persisted record of a processed inbound message.
// The daily chat and FAQ counts are derived from these rows.
type MessageLog struct {
	ID         string
	TelegramID int64
	ChatID     int64
	Kind       MessageKind
	Text       string
	Intent     Intent
	CreatedAt  time.Time
}
