package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/domain"
	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/repository"
	"telegram-clinic-support/internal/infra/logging"
)

// Compile-time check
var _ PatientUseCase = (*patientUC)(nil)

// PatientUseCase exposes patient profile operations used by bot flows.
type PatientUseCase interface {
	RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.Patient, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error)
	SetConsent(ctx context.Context, tgID int64, consent bool) error
}

type patientUC struct {
	patients repository.PatientRepository
	log      *zerolog.Logger
}

func NewPatientUseCase(patients repository.PatientRepository, logger *zerolog.Logger) *patientUC {
	return &patientUC{patients: patients, log: logger}
}

func (u *patientUC) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.Patient, error) {
	defer logging.TraceDuration(u.log, "PatientUC.RegisterOrFetch")()

	p, err := u.patients.FindByTelegramID(ctx, tgID)
	if err == nil {
		if username != "" && p.Username != username {
			p.Username = username
		}
		p.Touch()
		if err := u.patients.Save(ctx, p); err != nil {
			u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to refresh patient")
			return nil, err
		}
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p, err = model.NewPatient("", tgID, username)
	if err != nil {
		return nil, err
	}
	if err := u.patients.Save(ctx, p); err != nil {
		u.log.Error().Err(err).Int64("tg_id", tgID).Msg("failed to register patient")
		return nil, err
	}
	return p, nil
}

func (u *patientUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error) {
	return u.patients.FindByTelegramID(ctx, tgID)
}

func (u *patientUC) SetConsent(ctx context.Context, tgID int64, consent bool) error {
	defer logging.TraceDuration(u.log, "PatientUC.SetConsent")()
	return u.patients.SetConsent(ctx, tgID, consent)
}
