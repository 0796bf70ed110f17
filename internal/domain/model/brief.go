package model

import "time"

// DailyBrief is a read-only aggregate over one UTC day, computed on
// demand and never persisted.
type DailyBrief struct {
	Date     time.Time `json:"date"`
	Chats    int       `json:"chats"`
	Bookings int       `json:"bookings"`
	Cancels  int       `json:"cancels"`
	FAQs     int       `json:"faqs"`
}

// DayWindow returns the [00:00:00, 23:59:59.999] UTC window for a date.
func DayWindow(date time.Time) (time.Time, time.Time) {
	y, m, d := date.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)
	return from, to
}
