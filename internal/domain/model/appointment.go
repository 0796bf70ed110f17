package model

import (
	"time"

	"telegram-clinic-support/internal/domain"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending     AppointmentStatus = "pending"
	AppointmentStatusConfirmed   AppointmentStatus = "confirmed"
	AppointmentStatusRescheduled AppointmentStatus = "rescheduled"
	AppointmentStatusCancelled   AppointmentStatus = "cancelled"
	AppointmentStatusCompleted   AppointmentStatus = "completed"
)

// Appointment is a booking request persisted for staff follow-up.
// TimeSlotText stays free text; staff confirm the actual slot later.
type Appointment struct {
	ID           string
	TelegramID   int64
	ChatID       int64
	PatientName  string
	TimeSlotText string
	RawText      string
	Status       AppointmentStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewAppointment(tgID, chatID int64, req *BookingRequest) (*Appointment, error) {
	if req == nil || req.Name == "" || req.TimeSlotText == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Appointment{
		ID:           uuid.NewString(),
		TelegramID:   tgID,
		ChatID:       chatID,
		PatientName:  req.Name,
		TimeSlotText: req.TimeSlotText,
		RawText:      req.RawText,
		Status:       AppointmentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
