package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/repository"
)

var _ repository.MessageLogRepository = (*messageLogRepo)(nil)

type messageLogRepo struct {
	pool *pgxpool.Pool
}

func NewMessageLogRepo(pool *pgxpool.Pool) *messageLogRepo {
	return &messageLogRepo{pool: pool}
}

func (r *messageLogRepo) Save(ctx context.Context, entry *model.MessageLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO message_logs (id, telegram_id, chat_id, kind, text, intent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);`

	_, err := r.pool.Exec(ctx, q,
		entry.ID, entry.TelegramID, entry.ChatID, string(entry.Kind), entry.Text,
		string(entry.Intent), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("save message log: %w", err)
	}
	return nil
}

func (r *messageLogRepo) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM message_logs WHERE created_at BETWEEN $1 AND $2;`
	var n int
	if err := r.pool.QueryRow(ctx, q, from, to).Scan(&n); err != nil {
		return 0, fmt.Errorf("count message logs: %w", err)
	}
	return n, nil
}

func (r *messageLogRepo) CountTextMatchBetween(ctx context.Context, substrings []string, from, to time.Time) (int, error) {
	if len(substrings) == 0 {
		return 0, nil
	}
	// Build "text ILIKE $3 OR text ILIKE $4 ..." for each substring.
	conds := make([]string, len(substrings))
	args := []interface{}{from, to}
	for i, s := range substrings {
		conds[i] = fmt.Sprintf("text ILIKE $%d", i+3)
		args = append(args, "%"+s+"%")
	}
	q := fmt.Sprintf(
		`SELECT COUNT(*) FROM message_logs WHERE created_at BETWEEN $1 AND $2 AND (%s);`,
		strings.Join(conds, " OR "))

	var n int
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count message logs by text: %w", err)
	}
	return n, nil
}
