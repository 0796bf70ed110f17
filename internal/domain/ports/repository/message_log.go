package repository

import (
	"context"
	"time"

	"telegram-clinic-support/internal/domain/model"
)

// MessageLogRepository records processed inbound messages and serves the
// daily chat and FAQ counts.
type MessageLogRepository interface {
	Save(ctx context.Context, entry *model.MessageLog) error

	// CountBetween counts logged messages in [from, to].
	CountBetween(ctx context.Context, from, to time.Time) (int, error)

	// CountTextMatchBetween counts logged messages in [from, to] whose
	// text contains any of the given substrings (case-insensitive).
	CountTextMatchBetween(ctx context.Context, substrings []string, from, to time.Time) (int, error)
}
