//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"telegram-clinic-support/internal/domain/model"
)

func TestMessageLogRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewMessageLogRepo(testPool)
	ctx := context.Background()

	t.Run("should count messages in the day window", func(t *testing.T) {
		cleanup(t)

		now := time.Now().UTC()
		entries := []*model.MessageLog{
			{TelegramID: 1, ChatID: 1, Kind: model.KindText, Text: "hello", Intent: model.IntentUnrecognized, CreatedAt: now},
			{TelegramID: 2, ChatID: 2, Kind: model.KindText, Text: "I have a FAQ about billing", Intent: model.IntentFAQMenu, CreatedAt: now},
			{TelegramID: 3, ChatID: 3, Kind: model.KindText, Text: "quick question about hours", Intent: model.IntentUnrecognized, CreatedAt: now},
			{TelegramID: 4, ChatID: 4, Kind: model.KindText, Text: "old message", Intent: model.IntentUnrecognized, CreatedAt: now.Add(-48 * time.Hour)},
		}
		for _, e := range entries {
			if err := repo.Save(ctx, e); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		from, to := model.DayWindow(now)
		total, err := repo.CountBetween(ctx, from, to)
		if err != nil {
			t.Fatalf("CountBetween failed: %v", err)
		}
		if total != 3 {
			t.Errorf("expected 3 messages today, got %d", total)
		}

		// The FAQ proxy: substring match on "faq" or "question", case-insensitive.
		faqs, err := repo.CountTextMatchBetween(ctx, []string{"faq", "question"}, from, to)
		if err != nil {
			t.Fatalf("CountTextMatchBetween failed: %v", err)
		}
		if faqs != 2 {
			t.Errorf("expected 2 FAQ-like messages today, got %d", faqs)
		}
	})

	t.Run("should count zero on an empty day", func(t *testing.T) {
		cleanup(t)

		from, to := model.DayWindow(time.Now())
		total, err := repo.CountBetween(ctx, from, to)
		if err != nil {
			t.Fatalf("CountBetween failed: %v", err)
		}
		if total != 0 {
			t.Errorf("expected 0, got %d", total)
		}
	})
}
