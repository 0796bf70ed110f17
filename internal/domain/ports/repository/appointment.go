package repository

import (
	"context"
	"time"

	"telegram-clinic-support/internal/domain/model"
)

// AppointmentRepository persists booking requests and serves the
// follow-up and daily-count queries.
type AppointmentRepository interface {
	Save(ctx context.Context, a *model.Appointment) error

	// FindByStatuses returns appointments in any of the given statuses,
	// ordered by creation time ascending, capped at limit.
	FindByStatuses(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]*model.Appointment, error)

	// CountCreatedBetween counts appointments created in [from, to].
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error)

	// CountStatusBetween counts appointments in status created in [from, to].
	CountStatusBetween(ctx context.Context, status model.AppointmentStatus, from, to time.Time) (int, error)
}
