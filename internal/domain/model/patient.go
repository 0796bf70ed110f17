package model

import (
	"time"

	"telegram-clinic-support/internal/domain"

	"github.com/google/uuid"
)

// Patient is a domain entity representing a Telegram user known to the
// clinic. Consent controls whether their messages may be logged.
type Patient struct {
	ID           string
	TelegramID   int64
	Username     string
	Consent      bool
	RegisteredAt time.Time
	LastActiveAt time.Time
}

func NewPatient(id string, tgID int64, username string) (*Patient, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Patient{
		ID:           id,
		TelegramID:   tgID,
		Username:     username,
		Consent:      true,
		RegisteredAt: time.Now(),
		LastActiveAt: time.Now(),
	}, nil
}

func (p *Patient) IsZero() bool { return p == nil || p.ID == "" }
func (p *Patient) Touch()       { p.LastActiveAt = time.Now() }
