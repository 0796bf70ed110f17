package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/repository"
	"telegram-clinic-support/internal/infra/logging"
	"telegram-clinic-support/internal/infra/metrics"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase computes the privileged read-only aggregates. Every
// query is fail-soft: a failed count becomes 0, a failed listing
// becomes an empty slice, and the failure is logged for operators.
type StatsUseCase interface {
	DailyBrief(ctx context.Context, date time.Time) *model.DailyBrief
	Followups(ctx context.Context, limit int) []*model.Appointment
}

// followupStatuses are the appointment states staff still need to act on.
var followupStatuses = []model.AppointmentStatus{
	model.AppointmentStatusPending,
	model.AppointmentStatusRescheduled,
}

// faqProxyTerms approximate the FAQ count by substring match over logged
// message text. This is a proxy, not a true classifier-derived count.
var faqProxyTerms = []string{"faq", "question"}

type statsUC struct {
	appointments repository.AppointmentRepository
	messages     repository.MessageLogRepository

	log *zerolog.Logger
}

func NewStatsUseCase(appointments repository.AppointmentRepository, messages repository.MessageLogRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{appointments: appointments, messages: messages, log: logger}
}

func (s *statsUC) DailyBrief(ctx context.Context, date time.Time) *model.DailyBrief {
	defer logging.TraceDuration(s.log, "StatsUC.DailyBrief")()

	from, to := model.DayWindow(date)
	brief := &model.DailyBrief{Date: from}

	// Four independent counts; each failure degrades to 0 alone.
	brief.Chats = s.count(ctx, "brief_chats", func(qctx context.Context) (int, error) {
		return s.messages.CountBetween(qctx, from, to)
	})
	brief.Bookings = s.count(ctx, "brief_bookings", func(qctx context.Context) (int, error) {
		return s.appointments.CountCreatedBetween(qctx, from, to)
	})
	brief.Cancels = s.count(ctx, "brief_cancels", func(qctx context.Context) (int, error) {
		return s.appointments.CountStatusBetween(qctx, model.AppointmentStatusCancelled, from, to)
	})
	brief.FAQs = s.count(ctx, "brief_faqs", func(qctx context.Context) (int, error) {
		return s.messages.CountTextMatchBetween(qctx, faqProxyTerms, from, to)
	})
	return brief
}

func (s *statsUC) count(ctx context.Context, op string, fn func(context.Context) (int, error)) int {
	qctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	n, err := fn(qctx)
	if err != nil {
		metrics.IncDBError(op)
		s.log.Error().Err(err).Str("op", op).Msg("aggregate query failed; defaulting to 0")
		return 0
	}
	return n
}

func (s *statsUC) Followups(ctx context.Context, limit int) []*model.Appointment {
	defer logging.TraceDuration(s.log, "StatsUC.Followups")()

	if limit <= 0 {
		limit = 20
	}
	qctx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()
	appts, err := s.appointments.FindByStatuses(qctx, followupStatuses, limit)
	if err != nil {
		metrics.IncDBError("followups")
		s.log.Error().Err(err).Msg("followups query failed; returning empty list")
		return nil
	}
	return appts
}
