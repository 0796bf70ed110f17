package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/config"
	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/adapter"
	"telegram-clinic-support/internal/domain/ports/repository"
	"telegram-clinic-support/internal/infra/i18n"
	"telegram-clinic-support/internal/infra/logging"
	"telegram-clinic-support/internal/infra/metrics"
)

const storageTimeout = 5 * time.Second

// Compile-time check
var _ ResolverUseCase = (*resolverUC)(nil)

// ResolverUseCase maps a classified intent to an outbound reply.
// Collaborators are invoked only for intents that need them, and every
// collaborator failure degrades to a reply rather than an error.
type ResolverUseCase interface {
	Resolve(ctx context.Context, intent model.Intent, msg *model.IncomingMessage) model.OutboundReply
}

type resolverUC struct {
	appointments repository.AppointmentRepository
	clinic       config.ClinicConfig
	assistant    adapter.AIServiceAdapter // optional, health concerns only
	tr           *i18n.Translator
	log          *zerolog.Logger
}

func NewResolverUseCase(
	appointments repository.AppointmentRepository,
	clinic config.ClinicConfig,
	tr *i18n.Translator,
	logger *zerolog.Logger,
) *resolverUC {
	return &resolverUC{appointments: appointments, clinic: clinic, tr: tr, log: logger}
}

// AttachAssistant enables AI-drafted replies to health concerns. With
// no assistant attached the canned reply is used unchanged.
func (r *resolverUC) AttachAssistant(ai adapter.AIServiceAdapter) {
	r.assistant = ai
}

func (r *resolverUC) Resolve(ctx context.Context, intent model.Intent, msg *model.IncomingMessage) model.OutboundReply {
	defer logging.TraceDuration(r.log, "ResolverUC.Resolve")()

	switch intent {
	case model.IntentGreeting:
		return canned(r.tr.T("welcome_message", r.clinic.Name, r.clinic.City))
	case model.IntentBookingInstructions:
		return canned(r.tr.T("booking_instructions", r.clinic.Name))
	case model.IntentFAQMenu:
		return canned(r.tr.T("faq_menu", r.clinic.Name, r.clinic.City))
	case model.IntentStaffConnect:
		return canned(r.tr.T("staff_connect"))
	case model.IntentOwnerQuery:
		return canned(r.tr.T("owner_query", r.clinic.OwnerName, r.clinic.Name))
	case model.IntentHealthConcern:
		return r.resolveHealthConcern(ctx, msg)
	case model.IntentEmergencyConcern:
		return canned(r.tr.T("emergency_concern"))
	case model.IntentBookingSubmission:
		return r.resolveBooking(ctx, msg)
	case model.IntentBookingInvalid:
		return model.OutboundReply{Kind: model.ReplyBookingError, Text: r.tr.T("booking_invalid")}
	default:
		return canned(r.tr.T("unrecognized"))
	}
}

// resolveHealthConcern answers a non-urgent health message. When an
// assistant is attached it drafts the reply; any assistant failure
// degrades to the canned acknowledgement.
func (r *resolverUC) resolveHealthConcern(ctx context.Context, msg *model.IncomingMessage) model.OutboundReply {
	if r.assistant == nil {
		return canned(r.tr.T("health_concern"))
	}

	actx, cancel := context.WithTimeout(ctx, aiTimeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"You are the front-desk assistant of %s, a medical clinic. "+
			"A patient wrote: %q. Write a short, empathetic acknowledgement. "+
			"Do not diagnose and do not recommend medication. "+
			"Suggest booking an appointment if a doctor should look at it.",
		r.clinic.Name, msg.Text)

	text, err := r.assistant.GenerateReply(actx, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		metrics.IncAIFallback("assist")
		logging.With(ctx, r.log).Warn().Err(err).Msg("assistant reply degraded to canned text")
		return canned(r.tr.T("health_concern"))
	}
	return canned(strings.TrimSpace(text) + "\n\n" + r.tr.T("health_assist_disclaimer"))
}

// resolveBooking confirms to the user immediately and persists the
// appointment as a detached best-effort write: at-most-once, non-blocking.
// A storage failure is logged for operators and never surfaces to the user.
func (r *resolverUC) resolveBooking(ctx context.Context, msg *model.IncomingMessage) model.OutboundReply {
	req, err := model.ParseBooking(msg.Text)
	if err != nil {
		return model.OutboundReply{Kind: model.ReplyBookingError, Text: r.tr.T("booking_invalid")}
	}

	appt, err := model.NewAppointment(msg.SenderID, msg.ChatID, req)
	if err != nil {
		r.log.Error().Err(err).Int64("tg_id", msg.SenderID).Msg("build appointment")
		return model.OutboundReply{Kind: model.ReplyBookingError, Text: r.tr.T("booking_invalid")}
	}

	log := logging.With(ctx, r.log)
	go func() {
		// Detached from the request context on purpose: the user has
		// already been confirmed when this write runs.
		wctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()
		if err := r.appointments.Save(wctx, appt); err != nil {
			metrics.IncDBError("create_appointment")
			log.Error().Err(err).
				Str("appointment_id", appt.ID).
				Int64("tg_id", appt.TelegramID).
				Msg("best-effort appointment write failed")
		}
	}()

	return model.OutboundReply{
		Kind: model.ReplyBookingConfirm,
		Text: r.tr.T("booking_confirm", req.RawText),
	}
}

func canned(text string) model.OutboundReply {
	return model.OutboundReply{Kind: model.ReplyCanned, Text: text}
}
