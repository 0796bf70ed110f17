package model

import (
	"regexp"
	"strings"
)

// Intent classifies the purpose of a single inbound text message.
type Intent string

const (
	IntentGreeting            Intent = "greeting"
	IntentBookingInstructions Intent = "booking_instructions"
	IntentFAQMenu             Intent = "faq_menu"
	IntentStaffConnect        Intent = "staff_connect"
	IntentBookingSubmission   Intent = "booking_submission"
	IntentBookingInvalid      Intent = "booking_invalid"
	IntentHealthConcern       Intent = "health_concern"
	IntentEmergencyConcern    Intent = "emergency_concern"
	IntentOwnerQuery          Intent = "owner_query"
	IntentAdminBrief          Intent = "admin_brief"
	IntentAdminFollowups      Intent = "admin_followups"
	IntentUnrecognized        Intent = "unrecognized"
)

// Safety and identity rules run before booking/FAQ shortcuts; the
// evaluation order below is load-bearing, not incidental.
var emergencyKeywords = []string{
	"emergency", "suicide", "overdose", "can't breathe", "unconscious", "bleeding",
	"chest pain", "heart attack", "stroke", "seizure",
}

var healthKeywords = []string{
	"pain", "sick", "help", "urgent", "depression", "anxiety", "mental",
	"stress", "hurt", "feel", "doctor", "medicine", "treatment",
}

var bookingKeywords = []string{"book", "appointment", "schedule", "visit"}

// menuShortcuts are exact matches after trim+lowercase.
var menuShortcuts = map[string]Intent{
	"1": IntentBookingInstructions, "book": IntentBookingInstructions,
	"booking": IntentBookingInstructions, "appointment": IntentBookingInstructions,
	"2": IntentFAQMenu, "faq": IntentFAQMenu, "faqs": IntentFAQMenu,
	"info": IntentFAQMenu, "information": IntentFAQMenu,
	"3": IntentStaffConnect, "staff": IntentStaffConnect, "agent": IntentStaffConnect,
	"human": IntentStaffConnect, "person": IntentStaffConnect,
}

// bookingShapeRe matches "name part, slot part": letters/spaces, a comma,
// then alphanumeric/space/colon text, anchored start to end.
var bookingShapeRe = regexp.MustCompile(`^[A-Za-z ]+, *[A-Za-z0-9 :]+$`)

// Classifier maps free text to exactly one Intent with an ordered,
// first-match-wins rule chain. It is pure and deterministic; the only
// configured input is the clinic owner's name.
type Classifier struct {
	ownerRe *regexp.Regexp
}

func NewClassifier(ownerName string) *Classifier {
	c := &Classifier{}
	if name := strings.TrimSpace(ownerName); name != "" {
		c.ownerRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(name))
	}
	return c
}

// Classify is total: every input maps to an Intent, falling through to
// IntentUnrecognized. Callers must short-circuit empty/whitespace-only
// text before calling; an empty message never produces a reply.
//
// Keyword rules use substring matching on purpose ("helping" matches
// "help"); see DESIGN.md for the recorded decision.
func (c *Classifier) Classify(text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, kw := range emergencyKeywords {
		if strings.Contains(lower, kw) {
			return IntentEmergencyConcern
		}
	}
	if c.ownerRe != nil && c.ownerRe.MatchString(text) {
		return IntentOwnerQuery
	}
	if intent, ok := menuShortcuts[lower]; ok {
		return intent
	}
	if looksLikeBooking(text) {
		if _, err := ParseBooking(text); err == nil {
			return IntentBookingSubmission
		}
		return IntentBookingInvalid
	}
	for _, kw := range healthKeywords {
		if strings.Contains(lower, kw) {
			return IntentHealthConcern
		}
	}
	return IntentUnrecognized
}

// looksLikeBooking gates the structured booking parse: a comma, a booking
// keyword, or the full "name, slot" shape.
func looksLikeBooking(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.Contains(trimmed, ",") {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return bookingShapeRe.MatchString(trimmed)
}
