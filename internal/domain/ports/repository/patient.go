package repository

import (
	"context"

	"telegram-clinic-support/internal/domain/model"
)

// PatientRepository persists patient profiles keyed by Telegram ID.
type PatientRepository interface {
	// Save upserts by Telegram ID.
	Save(ctx context.Context, p *model.Patient) error
	FindByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error)
	SetConsent(ctx context.Context, tgID int64, consent bool) error
}
