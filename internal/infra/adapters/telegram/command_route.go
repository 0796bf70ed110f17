package telegram

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-clinic-support/internal/application"
	"telegram-clinic-support/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":  r.handleStartCommand,
		"help":   r.handleHelpCommand,
		"menu":   r.handleMenuCommand,
		"faq":    r.handleFAQCommand,
		"whoami": r.handleWhoamiCommand,
		"optout": r.handleOptoutCommand,
		"optin":  r.handleOptinCommand,

		// These handlers are wrapped in our adminOnly middleware.
		"md_brief":     r.adminOnly(r.handleBriefCommand),
		"md_followups": r.adminOnly(r.handleFollowupsCommand),
	}
}

// adminOnly rejects non-admin senders before the wrapped handler runs.
func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if !r.facade.IsAdmin(message.From.ID) {
			metrics.IncAdminCommand("/"+message.Command(), "unauthorized")
			return r.SendMessage(ctx, message.Chat.ID, r.translator.T("error_unauthorized"))
		}
		metrics.IncAdminCommand("/"+message.Command(), "authorized")
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	reply := r.facade.HandleStart(ctx, message.From.ID, message.From.UserName)
	if err := r.sendMainMenu(ctx, message.Chat.ID, reply.Text); err != nil {
		// Fallback plain message on error
		return r.SendMessage(ctx, message.Chat.ID, reply.Text)
	}
	return nil
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendReply(ctx, message.Chat.ID, r.facade.HandleHelp())
}

func (r *RealTelegramBotAdapter) handleMenuCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendMainMenu(ctx, message.Chat.ID, r.facade.HandleMenu(ctx, message.From.ID).Text)
}

func (r *RealTelegramBotAdapter) handleFAQCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendReply(ctx, message.Chat.ID, r.facade.HandleFAQ(ctx, message.From.ID))
}

func (r *RealTelegramBotAdapter) handleWhoamiCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendReply(ctx, message.Chat.ID, r.facade.HandleWhoami(ctx, message.From.ID))
}

func (r *RealTelegramBotAdapter) handleOptoutCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendReply(ctx, message.Chat.ID, r.facade.HandleConsent(ctx, message.From.ID, false))
}

func (r *RealTelegramBotAdapter) handleOptinCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendReply(ctx, message.Chat.ID, r.facade.HandleConsent(ctx, message.From.ID, true))
}

// handleBriefCommand handles /md_brief [YYYY-MM-DD], defaulting to today.
func (r *RealTelegramBotAdapter) handleBriefCommand(ctx context.Context, message *tgbotapi.Message) error {
	date := application.ParseBriefDate(message.CommandArguments())
	return r.sendReply(ctx, message.Chat.ID, r.facade.HandleAdminBrief(ctx, message.From.ID, date))
}

// handleFollowupsCommand handles /md_followups [limit].
func (r *RealTelegramBotAdapter) handleFollowupsCommand(ctx context.Context, message *tgbotapi.Message) error {
	limit := 0
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil {
			limit = n
		}
	}
	return r.sendReply(ctx, message.Chat.ID, r.facade.HandleAdminFollowups(ctx, message.From.ID, limit))
}
