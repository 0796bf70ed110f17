package model

// ReplyKind tags an outbound reply so the transport and tests can tell
// canned text, booking confirmations and admin reports apart without
// string matching.
type ReplyKind string

const (
	ReplyNone           ReplyKind = ""
	ReplyCanned         ReplyKind = "canned"
	ReplyBookingConfirm ReplyKind = "booking_confirm"
	ReplyBookingError   ReplyKind = "booking_error"
	ReplyMediaAnalysis  ReplyKind = "media_analysis"
	ReplyAdminReport    ReplyKind = "admin_report"
	ReplyUnauthorized   ReplyKind = "unauthorized"
)

// OutboundReply is the tagged result of resolving one inbound message.
type OutboundReply struct {
	Kind ReplyKind
	Text string
}

func (r OutboundReply) IsZero() bool { return r.Kind == ReplyNone && r.Text == "" }
