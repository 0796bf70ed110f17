//go:build !integration

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-clinic-support/internal/domain"
	"telegram-clinic-support/internal/domain/model"
)

func TestPatientRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewPatientRepo()

	t.Run("find before save reports not found", func(t *testing.T) {
		if _, err := repo.FindByTelegramID(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("save is an upsert keyed by telegram id", func(t *testing.T) {
		p, err := model.NewPatient("", 42, "ada")
		if err != nil {
			t.Fatalf("new patient: %v", err)
		}
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("save: %v", err)
		}
		p.Username = "ada_l"
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("second save: %v", err)
		}

		got, err := repo.FindByTelegramID(ctx, 42)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.Username != "ada_l" {
			t.Errorf("username = %q, want the updated value", got.Username)
		}
	})

	t.Run("set consent flips the stored flag", func(t *testing.T) {
		if err := repo.SetConsent(ctx, 42, false); err != nil {
			t.Fatalf("set consent: %v", err)
		}
		got, err := repo.FindByTelegramID(ctx, 42)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if got.Consent {
			t.Error("consent still true after opt-out")
		}
		if err := repo.SetConsent(ctx, 999, false); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("unknown patient: err = %v, want ErrNotFound", err)
		}
	})

	t.Run("returned patient is a copy", func(t *testing.T) {
		got, err := repo.FindByTelegramID(ctx, 42)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		got.Username = "mutated"
		again, _ := repo.FindByTelegramID(ctx, 42)
		if again.Username == "mutated" {
			t.Error("caller mutation leaked into the store")
		}
	})
}

func TestAppointmentRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepo()
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)

	seed := []struct {
		id     string
		status model.AppointmentStatus
		at     time.Time
	}{
		{"a1", model.AppointmentStatusPending, base.Add(2 * time.Hour)},
		{"a2", model.AppointmentStatusRescheduled, base.Add(1 * time.Hour)},
		{"a3", model.AppointmentStatusCancelled, base.Add(3 * time.Hour)},
		{"a4", model.AppointmentStatusPending, base.Add(30 * time.Minute)},
		{"a5", model.AppointmentStatusPending, base.Add(26 * time.Hour)}, // next day
	}
	for _, s := range seed {
		err := repo.Save(ctx, &model.Appointment{
			ID: s.id, TelegramID: 7, ChatID: 7,
			PatientName: "Ada", TimeSlotText: "Friday 3pm",
			Status: s.status, CreatedAt: s.at, UpdatedAt: s.at,
		})
		if err != nil {
			t.Fatalf("seed %s: %v", s.id, err)
		}
	}

	t.Run("find by statuses returns oldest first with limit", func(t *testing.T) {
		got, err := repo.FindByStatuses(ctx,
			[]model.AppointmentStatus{model.AppointmentStatusPending, model.AppointmentStatusRescheduled}, 3)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		wantOrder := []string{"a4", "a2", "a1"}
		if len(got) != len(wantOrder) {
			t.Fatalf("got %d appointments, want %d", len(got), len(wantOrder))
		}
		for i, a := range got {
			if a.ID != wantOrder[i] {
				t.Errorf("position %d: id = %s, want %s", i, a.ID, wantOrder[i])
			}
		}
	})

	t.Run("day window counts include boundaries and exclude the next day", func(t *testing.T) {
		from := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
		to := from.Add(24*time.Hour - time.Millisecond)

		total, err := repo.CountCreatedBetween(ctx, from, to)
		if err != nil {
			t.Fatalf("count created: %v", err)
		}
		if total != 4 {
			t.Errorf("created in window = %d, want 4", total)
		}

		cancels, err := repo.CountStatusBetween(ctx, model.AppointmentStatusCancelled, from, to)
		if err != nil {
			t.Fatalf("count cancelled: %v", err)
		}
		if cancels != 1 {
			t.Errorf("cancelled in window = %d, want 1", cancels)
		}
	})

	t.Run("save overwrites by id", func(t *testing.T) {
		err := repo.Save(ctx, &model.Appointment{
			ID: "a1", TelegramID: 7, ChatID: 7,
			PatientName: "Ada", TimeSlotText: "Friday 3pm",
			Status: model.AppointmentStatusConfirmed, CreatedAt: base.Add(2 * time.Hour),
		})
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		got, err := repo.FindByStatuses(ctx, []model.AppointmentStatus{model.AppointmentStatusConfirmed}, 0)
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if len(got) != 1 || got[0].ID != "a1" {
			t.Fatalf("confirmed = %v, want just a1", got)
		}
	})
}

func TestMessageLogRepo(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageLogRepo()
	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	entries := []struct {
		text string
		at   time.Time
	}{
		{"what are your opening hours", base},
		{"FAQ please", base.Add(time.Hour)},
		{"Jane Smith, Friday 3pm", base.Add(2 * time.Hour)},
		{"hello again", base.Add(25 * time.Hour)}, // next day
	}
	for _, e := range entries {
		err := repo.Save(ctx, &model.MessageLog{
			TelegramID: 7, ChatID: 7, Kind: model.KindText,
			Text: e.text, Intent: model.IntentUnrecognized, CreatedAt: e.at,
		})
		if err != nil {
			t.Fatalf("save %q: %v", e.text, err)
		}
	}

	t.Run("save fills id and timestamp defaults", func(t *testing.T) {
		fresh := NewMessageLogRepo()
		if err := fresh.Save(ctx, &model.MessageLog{TelegramID: 8, Text: "x"}); err != nil {
			t.Fatalf("save: %v", err)
		}
		fresh.mu.RLock()
		last := fresh.entries[len(fresh.entries)-1]
		fresh.mu.RUnlock()
		if last.ID == "" {
			t.Error("ID not defaulted")
		}
		if last.CreatedAt.IsZero() {
			t.Error("CreatedAt not defaulted")
		}
	})

	t.Run("count between respects the window", func(t *testing.T) {
		from := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
		to := from.Add(24*time.Hour - time.Millisecond)
		n, err := repo.CountBetween(ctx, from, to)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 3 {
			t.Errorf("count = %d, want 3", n)
		}
	})

	t.Run("text match is case-insensitive and counts a row once", func(t *testing.T) {
		from := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
		to := from.Add(24*time.Hour - time.Millisecond)
		n, err := repo.CountTextMatchBetween(ctx, []string{"faq", "opening hours", "hours"}, from, to)
		if err != nil {
			t.Fatalf("count: %v", err)
		}
		if n != 2 {
			t.Errorf("count = %d, want 2", n)
		}
	})
}
