package adapter

import "context"

// InlineButton describes one inline keyboard button. URL buttons open a
// link; Data buttons send callback data.
type InlineButton struct {
	Text string
	Data string
	URL  string
}

// TelegramBotAdapter is the outbound side of the transport: a capability
// to send replies keyed to the originating chat.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendButtons(ctx context.Context, chatID int64, text string, rows [][]InlineButton) error
}
