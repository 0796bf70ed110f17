package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-clinic-support/internal/domain"
	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/repository"
)

var _ repository.PatientRepository = (*patientRepo)(nil)

type patientRepo struct {
	pool *pgxpool.Pool
}

func NewPatientRepo(pool *pgxpool.Pool) *patientRepo {
	return &patientRepo{pool: pool}
}

func (r *patientRepo) Save(ctx context.Context, p *model.Patient) error {
	const q = `
INSERT INTO patients (id, telegram_id, username, consent, registered_at, last_active_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (telegram_id) DO UPDATE SET
  username = EXCLUDED.username,
  last_active_at = EXCLUDED.last_active_at;`

	_, err := r.pool.Exec(ctx, q, p.ID, p.TelegramID, p.Username, p.Consent, p.RegisteredAt, p.LastActiveAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save patient: %w", err)
	}
	return nil
}

func (r *patientRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error) {
	const q = `
SELECT id, telegram_id, username, consent, registered_at, last_active_at
FROM patients
WHERE telegram_id = $1;`

	var p model.Patient
	err := r.pool.QueryRow(ctx, q, tgID).Scan(
		&p.ID, &p.TelegramID, &p.Username, &p.Consent, &p.RegisteredAt, &p.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}

func (r *patientRepo) SetConsent(ctx context.Context, tgID int64, consent bool) error {
	const q = `UPDATE patients SET consent = $2 WHERE telegram_id = $1;`

	tag, err := r.pool.Exec(ctx, q, tgID, consent)
	if err != nil {
		return fmt.Errorf("set consent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
