package model

import (
	"strings"

	"telegram-clinic-support/internal/domain"
)

// BookingRequest is the structured view of a "name, time slot" message.
// It is created transiently during classification and persisted only as
// an Appointment.
type BookingRequest struct {
	RawText      string
	Name         string
	TimeSlotText string
}

// ParseBooking splits the text around the first comma. Both parts must
// trim to more than two characters, otherwise the request is invalid.
func ParseBooking(text string) (*BookingRequest, error) {
	raw := strings.TrimSpace(text)
	name, slot, found := strings.Cut(raw, ",")
	if !found {
		return nil, domain.ErrInvalidBooking
	}
	name = strings.TrimSpace(name)
	slot = strings.TrimSpace(slot)
	if len(name) <= 2 || len(slot) <= 2 {
		return nil, domain.ErrInvalidBooking
	}
	return &BookingRequest{RawText: raw, Name: name, TimeSlotText: slot}, nil
}
