package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/application"
	"telegram-clinic-support/internal/config"
	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/adapter"
	"telegram-clinic-support/internal/infra/i18n"
	red "telegram-clinic-support/internal/infra/redis"
)

// Attachments above this size are not downloaded for analysis; the
// sender gets the manual-review fallback instead.
const maxMediaBytes = 20 << 20

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter uses tgbotapi to poll updates and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	translator  *i18n.Translator
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	translator *i18n.Translator,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		translator:    translator,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handling failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// SendMessage implements the adapter port.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, tgID int64, text string) error {
	msg := tgbotapi.NewMessage(tgID, text)
	_, err := r.bot.Send(msg)
	return err
}

// SendButtons sends a message with inline buttons.
// - If btn.URL is set, the button opens a link
// - Else if btn.Data is set, the button sends callback data
// - Else a safe fallback uses btn.Text as callback data
func (r *RealTelegramBotAdapter) SendButtons(
	ctx context.Context,
	telegramID int64,
	text string,
	rows [][]adapter.InlineButton,
) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		kr := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			var kb tgbotapi.InlineKeyboardButton
			switch {
			case btn.URL != "":
				kb = tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL)
			case btn.Data != "":
				kb = tgbotapi.NewInlineKeyboardButtonData(label, btn.Data)
			default:
				kb = tgbotapi.NewInlineKeyboardButtonData(label, label)
			}
			kr = append(kr, kb)
		}
		kbRows = append(kbRows, kr)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	msg := tgbotapi.NewMessage(telegramID, text)
	msg.ReplyMarkup = markup
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	message := update.Message
	if message == nil || message.From == nil {
		return nil
	}
	chatID := message.Chat.ID
	tgID := message.From.ID

	command := "message"
	if message.IsCommand() {
		command = "/" + message.Command()
	}
	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), 20, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			return r.SendMessage(ctx, chatID, "Rate limit exceeded. Please try again later.")
		}
	}

	if message.IsCommand() {
		if handler, ok := r.commandRoutes()[message.Command()]; ok {
			return handler(ctx, message)
		}
		return r.sendReply(ctx, chatID, r.facade.HandleHelp())
	}

	// Attachments before text: a photo with a caption is still a photo.
	if kind, fileID, contentType := attachmentOf(message); kind != model.KindText {
		return r.handleAttachment(ctx, message, kind, fileID, contentType)
	}

	msg := &model.IncomingMessage{
		SenderID: tgID,
		ChatID:   chatID,
		Username: message.From.UserName,
		Kind:     model.KindText,
		Text:     message.Text,
	}
	return r.sendReply(ctx, chatID, r.facade.HandleText(ctx, msg))
}

// attachmentOf extracts the analyzable attachment from a message, if
// any. Photos use the largest available size.
func attachmentOf(message *tgbotapi.Message) (model.MessageKind, string, string) {
	switch {
	case len(message.Photo) > 0:
		best := message.Photo[len(message.Photo)-1]
		return model.KindImage, best.FileID, "image/jpeg"
	case message.Voice != nil:
		ct := message.Voice.MimeType
		if ct == "" {
			ct = "audio/ogg"
		}
		return model.KindVoice, message.Voice.FileID, ct
	case message.Audio != nil:
		ct := message.Audio.MimeType
		if ct == "" {
			ct = "audio/mpeg"
		}
		return model.KindAudio, message.Audio.FileID, ct
	case message.Video != nil:
		ct := message.Video.MimeType
		if ct == "" {
			ct = "video/mp4"
		}
		return model.KindVideo, message.Video.FileID, ct
	case message.Document != nil:
		return model.KindDocument, message.Document.FileID, message.Document.MimeType
	default:
		return model.KindText, "", ""
	}
}

func (r *RealTelegramBotAdapter) handleAttachment(ctx context.Context, message *tgbotapi.Message, kind model.MessageKind, fileID, contentType string) error {
	chatID := message.Chat.ID
	msg := &model.IncomingMessage{
		SenderID: message.From.ID,
		ChatID:   chatID,
		Username: message.From.UserName,
		Kind:     kind,
		MediaRef: fileID,
	}

	data, err := r.downloadFile(ctx, fileID)
	if err != nil {
		r.log.Warn().Err(err).Str("file_id", fileID).Msg("attachment download failed")
		// The dispatcher short-circuits an empty payload to the
		// manual-review fallback for this kind.
		data = nil
	}

	reply := r.facade.HandleMedia(ctx, msg, contentType, data)
	if err := r.sendReply(ctx, chatID, reply); err != nil {
		return err
	}
	// A captioned attachment also goes through the text pipeline.
	if strings.TrimSpace(message.Caption) != "" {
		textMsg := &model.IncomingMessage{
			SenderID: message.From.ID,
			ChatID:   chatID,
			Username: message.From.UserName,
			Kind:     model.KindText,
			Text:     message.Caption,
		}
		return r.sendReply(ctx, chatID, r.facade.HandleText(ctx, textMsg))
	}
	return nil
}

func (r *RealTelegramBotAdapter) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := r.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("file download: unexpected status " + resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
}

// sendReply forwards a non-zero facade reply to the chat.
func (r *RealTelegramBotAdapter) sendReply(ctx context.Context, chatID int64, reply model.OutboundReply) error {
	if reply.IsZero() {
		return nil
	}
	return r.SendMessage(ctx, chatID, reply.Text)
}

type cbHandler func(ctx context.Context, chatID int64, data string) error

// Exact-match callbacks for the main menu buttons.
func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"cmd:menu": func(ctx context.Context, id int64, _ string) error {
			return r.sendMainMenu(ctx, id, r.facade.HandleMenu(ctx, id).Text)
		},
		"cmd:book": func(ctx context.Context, id int64, _ string) error {
			msg := &model.IncomingMessage{SenderID: id, ChatID: id, Kind: model.KindText, Text: "book"}
			return r.sendReply(ctx, id, r.facade.HandleText(ctx, msg))
		},
		"cmd:faq": func(ctx context.Context, id int64, _ string) error {
			return r.sendReply(ctx, id, r.facade.HandleFAQ(ctx, id))
		},
		"cmd:staff": func(ctx context.Context, id int64, _ string) error {
			msg := &model.IncomingMessage{SenderID: id, ChatID: id, Kind: model.KindText, Text: "staff"}
			return r.sendReply(ctx, id, r.facade.HandleText(ctx, msg))
		},
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return errors.New("invalid callback query")
	}

	// Stop telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	var chatID int64
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	} else {
		chatID = query.From.ID
	}
	if chatID == 0 {
		return nil
	}

	data := strings.TrimSpace(query.Data)

	if r.rateLimiter != nil {
		if allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(chatID, "cb:"+data), 30, time.Minute); err == nil && !allowed {
			return r.SendMessage(ctx, chatID, "Rate limit exceeded. Please try again later.")
		}
	}

	if fn, ok := r.cbRoutes()[data]; ok {
		return fn(ctx, chatID, data)
	}
	return errors.New("unknown callback data")
}

// sendMainMenu shows the main actions as inline buttons.
func (r *RealTelegramBotAdapter) sendMainMenu(ctx context.Context, telegramID int64, intro string) error {
	rows := [][]adapter.InlineButton{
		{{Text: "📅 Book an appointment", Data: "cmd:book"}},
		{{Text: "ℹ️ FAQs and clinic info", Data: "cmd:faq"}},
		{{Text: "👩‍⚕️ Talk to our staff", Data: "cmd:staff"}},
	}
	if strings.TrimSpace(intro) == "" {
		intro = "How can we help you today?"
	}
	return r.SendButtons(ctx, telegramID, intro, rows)
}
