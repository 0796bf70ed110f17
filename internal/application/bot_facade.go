package application

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/adapter"
	"telegram-clinic-support/internal/domain/ports/repository"
	"telegram-clinic-support/internal/infra/i18n"
	"telegram-clinic-support/internal/infra/logging"
	"telegram-clinic-support/internal/infra/metrics"
)

// BotFacade composes usecases into high-level bot operations.
// Methods return tagged replies so the Telegram adapter just forwards
// the text to the originating chat.
type BotFacade struct {
	Classifier *model.Classifier
	ResolverUC usecaseResolver
	MediaUC    usecaseMedia
	StatsUC    usecaseStats
	PatientUC  usecasePatient

	messages repository.MessageLogRepository
	notifier adapter.TelegramBotAdapter
	tr       *i18n.Translator
	adminID  int64
	log      *zerolog.Logger
}

// Narrow views of the usecase interfaces; keeps the facade mockable
// without importing the usecase package (avoids an import cycle with
// usecase tests).
type usecaseResolver interface {
	Resolve(ctx context.Context, intent model.Intent, msg *model.IncomingMessage) model.OutboundReply
}
type usecaseMedia interface {
	Analyze(ctx context.Context, kind model.MessageKind, contentType string, data []byte) model.OutboundReply
}
type usecaseStats interface {
	DailyBrief(ctx context.Context, date time.Time) *model.DailyBrief
	Followups(ctx context.Context, limit int) []*model.Appointment
}
type usecasePatient interface {
	RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.Patient, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error)
	SetConsent(ctx context.Context, tgID int64, consent bool) error
}

func NewBotFacade(
	classifier *model.Classifier,
	resolverUC usecaseResolver,
	mediaUC usecaseMedia,
	statsUC usecaseStats,
	patientUC usecasePatient,
	messages repository.MessageLogRepository,
	tr *i18n.Translator,
	adminID int64,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		Classifier: classifier,
		ResolverUC: resolverUC,
		MediaUC:    mediaUC,
		StatsUC:    statsUC,
		PatientUC:  patientUC,
		messages:   messages,
		tr:         tr,
		adminID:    adminID,
		log:        logger,
	}
}

// AttachNotifier sets the outbound channel for staff alerts. The bot
// adapter is constructed after the facade, so this is wired separately.
// A nil notifier disables alerts.
func (b *BotFacade) AttachNotifier(bot adapter.TelegramBotAdapter) {
	b.notifier = bot
}

// IsAdmin reports whether senderID is the configured privileged identity.
func (b *BotFacade) IsAdmin(senderID int64) bool {
	return b.adminID != 0 && senderID == b.adminID
}

// HandleText runs the full pipeline for one inbound text message:
// normalize, classify, log, resolve. Empty or whitespace-only text
// short-circuits before classification and produces no reply.
func (b *BotFacade) HandleText(ctx context.Context, msg *model.IncomingMessage) model.OutboundReply {
	if strings.TrimSpace(msg.Text) == "" {
		return model.OutboundReply{}
	}

	intent := b.Classifier.Classify(msg.Text)
	metrics.IncMessage(string(msg.Kind), string(intent))

	b.logMessage(ctx, msg, intent)
	if intent == model.IntentEmergencyConcern {
		b.notifyStaff(ctx, msg)
	}

	reply := b.ResolverUC.Resolve(ctx, intent, msg)
	if !reply.IsZero() {
		metrics.IncReply(string(reply.Kind))
	}
	return reply
}

// logMessage records the message for the daily counts, respecting the
// patient's consent. Fail-soft: a storage error is logged, never surfaced.
func (b *BotFacade) logMessage(ctx context.Context, msg *model.IncomingMessage, intent model.Intent) {
	if p, err := b.PatientUC.GetByTelegramID(ctx, msg.SenderID); err == nil && p != nil && !p.Consent {
		return
	}
	entry := &model.MessageLog{
		TelegramID: msg.SenderID,
		ChatID:     msg.ChatID,
		Kind:       msg.Kind,
		Text:       msg.Text,
		Intent:     intent,
	}
	if err := b.messages.Save(ctx, entry); err != nil {
		metrics.IncDBError("log_message")
		logging.With(ctx, b.log).Warn().Err(err).
			Str("preview", logging.Redact(msg.Text, false)).
			Msg("message log write failed")
	}
}

// notifyStaff pushes an emergency-flagged message to the admin chat.
// Best-effort and detached: the patient's reply never waits on it.
func (b *BotFacade) notifyStaff(ctx context.Context, msg *model.IncomingMessage) {
	if b.notifier == nil || b.adminID == 0 {
		return
	}
	name := msg.Username
	if name == "" {
		name = "unknown"
	}
	alert := b.tr.T("emergency_alert", name, msg.SenderID, msg.Text)
	log := logging.With(ctx, b.log)
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.notifier.SendMessage(nctx, b.adminID, alert); err != nil {
			log.Error().Err(err).Int64("tg_id", msg.SenderID).Msg("staff emergency alert failed")
		}
	}()
}

// HandleMedia forwards an attachment to the media dispatcher.
func (b *BotFacade) HandleMedia(ctx context.Context, msg *model.IncomingMessage, contentType string, data []byte) model.OutboundReply {
	metrics.IncMessage(string(msg.Kind), "media")
	reply := b.MediaUC.Analyze(ctx, msg.Kind, contentType, data)
	if !reply.IsZero() {
		metrics.IncReply(string(reply.Kind))
	}
	return reply
}

// HandleStart registers or refreshes the patient and returns the welcome menu.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username string) model.OutboundReply {
	if _, err := b.PatientUC.RegisterOrFetch(ctx, tgID, username); err != nil {
		logging.With(ctx, b.log).Error().Err(err).Int64("tg_id", tgID).Msg("patient registration failed")
		// The menu still works without a stored profile.
	}
	return b.ResolverUC.Resolve(ctx, model.IntentGreeting, &model.IncomingMessage{SenderID: tgID, ChatID: tgID})
}

func (b *BotFacade) HandleHelp() model.OutboundReply {
	return model.OutboundReply{Kind: model.ReplyCanned, Text: b.tr.T("help_message")}
}

func (b *BotFacade) HandleMenu(ctx context.Context, tgID int64) model.OutboundReply {
	return b.ResolverUC.Resolve(ctx, model.IntentGreeting, &model.IncomingMessage{SenderID: tgID, ChatID: tgID})
}

func (b *BotFacade) HandleFAQ(ctx context.Context, tgID int64) model.OutboundReply {
	return b.ResolverUC.Resolve(ctx, model.IntentFAQMenu, &model.IncomingMessage{SenderID: tgID, ChatID: tgID})
}

// HandleWhoami echoes the stored profile.
func (b *BotFacade) HandleWhoami(ctx context.Context, tgID int64) model.OutboundReply {
	p, err := b.PatientUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		return model.OutboundReply{Kind: model.ReplyCanned, Text: b.tr.T("error_generic")}
	}
	consent := "on"
	if !p.Consent {
		consent = "off"
	}
	name := p.Username
	if name == "" {
		name = "(not set)"
	}
	return model.OutboundReply{
		Kind: model.ReplyCanned,
		Text: b.tr.T("whoami", name, p.TelegramID, consent, p.RegisteredAt.Format("2006-01-02")),
	}
}

func (b *BotFacade) HandleConsent(ctx context.Context, tgID int64, consent bool) model.OutboundReply {
	if err := b.PatientUC.SetConsent(ctx, tgID, consent); err != nil {
		return model.OutboundReply{Kind: model.ReplyCanned, Text: b.tr.T("error_generic")}
	}
	key := "optout_done"
	if consent {
		key = "optin_done"
	}
	return model.OutboundReply{Kind: model.ReplyCanned, Text: b.tr.T(key)}
}

// HandleAdminBrief returns the daily counts. The authorization gate
// runs first: a non-admin sender gets the uniform rejection and no
// collaborator is called.
func (b *BotFacade) HandleAdminBrief(ctx context.Context, senderID int64, date time.Time) model.OutboundReply {
	if !b.IsAdmin(senderID) {
		return model.OutboundReply{Kind: model.ReplyUnauthorized, Text: b.tr.T("error_unauthorized")}
	}
	brief := b.StatsUC.DailyBrief(ctx, date)
	text := b.tr.T("brief_header", brief.Date.Format("2006-01-02")) + "\n\n" +
		b.tr.T("brief_body", brief.Chats, brief.Bookings, brief.Cancels, brief.FAQs)
	return model.OutboundReply{Kind: model.ReplyAdminReport, Text: text}
}

// HandleAdminFollowups lists pending/rescheduled appointments, oldest first.
func (b *BotFacade) HandleAdminFollowups(ctx context.Context, senderID int64, limit int) model.OutboundReply {
	if !b.IsAdmin(senderID) {
		return model.OutboundReply{Kind: model.ReplyUnauthorized, Text: b.tr.T("error_unauthorized")}
	}
	appts := b.StatsUC.Followups(ctx, limit)
	if len(appts) == 0 {
		return model.OutboundReply{Kind: model.ReplyAdminReport, Text: b.tr.T("followups_empty")}
	}
	var sb strings.Builder
	sb.WriteString(b.tr.T("followups_header", len(appts)))
	sb.WriteString("\n\n")
	for i, a := range appts {
		sb.WriteString(b.tr.T("followups_row",
			i+1, a.PatientName, a.TimeSlotText, string(a.Status), a.CreatedAt.Format("2006-01-02")))
		sb.WriteString("\n")
	}
	return model.OutboundReply{Kind: model.ReplyAdminReport, Text: sb.String()}
}

// ParseBriefDate parses an optional YYYY-MM-DD command argument,
// defaulting to today (UTC).
func ParseBriefDate(arg string) time.Time {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return time.Now().UTC()
	}
	if d, err := time.Parse("2006-01-02", arg); err == nil {
		return d
	}
	return time.Now().UTC()
}
