package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/repository"
)

var _ repository.AppointmentRepository = (*appointmentRepo)(nil)

type appointmentRepo struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepo(pool *pgxpool.Pool) *appointmentRepo {
	return &appointmentRepo{pool: pool}
}

func (r *appointmentRepo) Save(ctx context.Context, a *model.Appointment) error {
	a.UpdatedAt = time.Now()

	const q = `
INSERT INTO appointments (id, telegram_id, chat_id, patient_name, time_slot_text, raw_text, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  time_slot_text = EXCLUDED.time_slot_text,
  updated_at = EXCLUDED.updated_at;`

	_, err := r.pool.Exec(ctx, q,
		a.ID, a.TelegramID, a.ChatID, a.PatientName, a.TimeSlotText, a.RawText,
		string(a.Status), a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepo) FindByStatuses(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]*model.Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	ss := make([]string, len(statuses))
	for i, s := range statuses {
		ss[i] = string(s)
	}

	const q = `
SELECT id, telegram_id, chat_id, patient_name, time_slot_text, raw_text, status, created_at, updated_at
FROM appointments
WHERE status = ANY($1)
ORDER BY created_at ASC
LIMIT $2;`

	rows, err := r.pool.Query(ctx, q, ss, limit)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer rows.Close()

	var out []*model.Appointment
	for rows.Next() {
		var a model.Appointment
		var statusStr string
		if err := rows.Scan(
			&a.ID, &a.TelegramID, &a.ChatID, &a.PatientName, &a.TimeSlotText,
			&a.RawText, &statusStr, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.Status = model.AppointmentStatus(statusStr)
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *appointmentRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM appointments WHERE created_at BETWEEN $1 AND $2;`
	var n int
	if err := r.pool.QueryRow(ctx, q, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

func (r *appointmentRepo) CountStatusBetween(ctx context.Context, status model.AppointmentStatus, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM appointments WHERE status = $1 AND created_at BETWEEN $2 AND $3;`
	var n int
	if err := r.pool.QueryRow(ctx, q, string(status), from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count appointments by status: %w", err)
	}
	return n, nil
}
