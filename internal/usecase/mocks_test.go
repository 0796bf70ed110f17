//go:build !integration

package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/adapter"
	"telegram-clinic-support/internal/infra/i18n"
)

// Function-field mocks: each test assigns only the behavior it needs.
// Unset fields panic, which makes an unexpected collaborator call an
// immediate test failure.

type mockAppointmentRepo struct {
	SaveFunc                func(ctx context.Context, a *model.Appointment) error
	FindByStatusesFunc      func(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]*model.Appointment, error)
	CountCreatedBetweenFunc func(ctx context.Context, from, to time.Time) (int, error)
	CountStatusBetweenFunc  func(ctx context.Context, status model.AppointmentStatus, from, to time.Time) (int, error)
}

func (m *mockAppointmentRepo) Save(ctx context.Context, a *model.Appointment) error {
	return m.SaveFunc(ctx, a)
}

func (m *mockAppointmentRepo) FindByStatuses(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]*model.Appointment, error) {
	return m.FindByStatusesFunc(ctx, statuses, limit)
}

func (m *mockAppointmentRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return m.CountCreatedBetweenFunc(ctx, from, to)
}

func (m *mockAppointmentRepo) CountStatusBetween(ctx context.Context, status model.AppointmentStatus, from, to time.Time) (int, error) {
	return m.CountStatusBetweenFunc(ctx, status, from, to)
}

type mockMessageLogRepo struct {
	SaveFunc                  func(ctx context.Context, entry *model.MessageLog) error
	CountBetweenFunc          func(ctx context.Context, from, to time.Time) (int, error)
	CountTextMatchBetweenFunc func(ctx context.Context, substrings []string, from, to time.Time) (int, error)
}

func (m *mockMessageLogRepo) Save(ctx context.Context, entry *model.MessageLog) error {
	return m.SaveFunc(ctx, entry)
}

func (m *mockMessageLogRepo) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	return m.CountBetweenFunc(ctx, from, to)
}

func (m *mockMessageLogRepo) CountTextMatchBetween(ctx context.Context, substrings []string, from, to time.Time) (int, error) {
	return m.CountTextMatchBetweenFunc(ctx, substrings, from, to)
}

type mockPatientRepo struct {
	SaveFunc             func(ctx context.Context, p *model.Patient) error
	FindByTelegramIDFunc func(ctx context.Context, tgID int64) (*model.Patient, error)
	SetConsentFunc       func(ctx context.Context, tgID int64, consent bool) error
}

func (m *mockPatientRepo) Save(ctx context.Context, p *model.Patient) error {
	return m.SaveFunc(ctx, p)
}

func (m *mockPatientRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error) {
	return m.FindByTelegramIDFunc(ctx, tgID)
}

func (m *mockPatientRepo) SetConsent(ctx context.Context, tgID int64, consent bool) error {
	return m.SetConsentFunc(ctx, tgID, consent)
}

type mockAIAdapter struct {
	GenerateReplyFunc func(ctx context.Context, prompt string) (string, error)
	DescribeMediaFunc func(ctx context.Context, data []byte, contentType string, mode adapter.MediaMode) (string, error)
}

func (m *mockAIAdapter) GenerateReply(ctx context.Context, prompt string) (string, error) {
	return m.GenerateReplyFunc(ctx, prompt)
}

func (m *mockAIAdapter) DescribeMedia(ctx context.Context, data []byte, contentType string, mode adapter.MediaMode) (string, error) {
	return m.DescribeMediaFunc(ctx, data, contentType, mode)
}

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("load translator: %v", err)
	}
	return tr
}
