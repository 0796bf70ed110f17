//go:build !integration

package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"telegram-clinic-support/internal/domain"
	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/adapter"
	"telegram-clinic-support/internal/infra/i18n"
)

const adminID int64 = 1000

type stubResolver struct {
	gotIntent model.Intent
	reply     model.OutboundReply
}

func (s *stubResolver) Resolve(ctx context.Context, intent model.Intent, msg *model.IncomingMessage) model.OutboundReply {
	s.gotIntent = intent
	return s.reply
}

type stubMedia struct {
	called bool
	reply  model.OutboundReply
}

func (s *stubMedia) Analyze(ctx context.Context, kind model.MessageKind, contentType string, data []byte) model.OutboundReply {
	s.called = true
	return s.reply
}

type stubStats struct {
	briefCalls    int
	followupCalls int
	brief         *model.DailyBrief
	followups     []*model.Appointment
}

func (s *stubStats) DailyBrief(ctx context.Context, date time.Time) *model.DailyBrief {
	s.briefCalls++
	if s.brief != nil {
		return s.brief
	}
	return &model.DailyBrief{Date: date}
}

func (s *stubStats) Followups(ctx context.Context, limit int) []*model.Appointment {
	s.followupCalls++
	return s.followups
}

type stubPatients struct {
	patient    *model.Patient
	findErr    error
	consentSet *bool
}

func (s *stubPatients) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.Patient, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.patient, nil
}

func (s *stubPatients) GetByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.patient, nil
}

func (s *stubPatients) SetConsent(ctx context.Context, tgID int64, consent bool) error {
	s.consentSet = &consent
	return nil
}

type stubMessageLog struct {
	saved []*model.MessageLog
	err   error
}

func (s *stubMessageLog) Save(ctx context.Context, entry *model.MessageLog) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, entry)
	return nil
}

func (s *stubMessageLog) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	return 0, nil
}

func (s *stubMessageLog) CountTextMatchBetween(ctx context.Context, substrings []string, from, to time.Time) (int, error) {
	return 0, nil
}

func newFacade(t *testing.T, resolver *stubResolver, media *stubMedia, stats *stubStats, patients *stubPatients, msgs *stubMessageLog) *BotFacade {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		t.Fatalf("load translator: %v", err)
	}
	log := zerolog.Nop()
	return NewBotFacade(model.NewClassifier("Dr. Reed"), resolver, media, stats, patients, msgs, tr, adminID, &log)
}

func TestBotFacade_HandleText(t *testing.T) {
	t.Run("empty text produces no reply and touches nothing", func(t *testing.T) {
		resolver := &stubResolver{reply: model.OutboundReply{Kind: model.ReplyCanned, Text: "hi"}}
		msgs := &stubMessageLog{}
		f := newFacade(t, resolver, &stubMedia{}, &stubStats{}, &stubPatients{findErr: domain.ErrNotFound}, msgs)

		reply := f.HandleText(context.Background(), &model.IncomingMessage{SenderID: 5, Text: "   \n\t "})

		if !reply.IsZero() {
			t.Fatalf("reply = %+v, want zero", reply)
		}
		if resolver.gotIntent != "" {
			t.Error("resolver must not run for empty text")
		}
		if len(msgs.saved) != 0 {
			t.Error("empty text must not be logged")
		}
	})

	t.Run("text is classified, logged and resolved", func(t *testing.T) {
		resolver := &stubResolver{reply: model.OutboundReply{Kind: model.ReplyCanned, Text: "welcome"}}
		msgs := &stubMessageLog{}
		f := newFacade(t, resolver, &stubMedia{}, &stubStats{}, &stubPatients{findErr: domain.ErrNotFound}, msgs)

		reply := f.HandleText(context.Background(), &model.IncomingMessage{SenderID: 5, ChatID: 5, Kind: model.KindText, Text: "faq"})

		if resolver.gotIntent != model.IntentFAQMenu {
			t.Errorf("intent = %q, want faq menu", resolver.gotIntent)
		}
		if reply.Text != "welcome" {
			t.Errorf("reply = %q", reply.Text)
		}
		if len(msgs.saved) != 1 || msgs.saved[0].Intent != model.IntentFAQMenu {
			t.Errorf("logged = %+v, want one entry with the intent", msgs.saved)
		}
	})

	t.Run("opted-out patient is not logged", func(t *testing.T) {
		p, _ := model.NewPatient("", 5, "ada")
		p.Consent = false
		resolver := &stubResolver{reply: model.OutboundReply{Kind: model.ReplyCanned, Text: "x"}}
		msgs := &stubMessageLog{}
		f := newFacade(t, resolver, &stubMedia{}, &stubStats{}, &stubPatients{patient: p}, msgs)

		f.HandleText(context.Background(), &model.IncomingMessage{SenderID: 5, Text: "hello there"})

		if len(msgs.saved) != 0 {
			t.Errorf("logged %d entries for an opted-out patient", len(msgs.saved))
		}
	})

	t.Run("log failure does not block the reply", func(t *testing.T) {
		resolver := &stubResolver{reply: model.OutboundReply{Kind: model.ReplyCanned, Text: "still here"}}
		msgs := &stubMessageLog{err: errors.New("disk full")}
		f := newFacade(t, resolver, &stubMedia{}, &stubStats{}, &stubPatients{findErr: domain.ErrNotFound}, msgs)

		reply := f.HandleText(context.Background(), &model.IncomingMessage{SenderID: 5, Text: "hello"})
		if reply.Text != "still here" {
			t.Errorf("reply = %q, want resolver output despite log failure", reply.Text)
		}
	})
}

func TestBotFacade_AdminGate(t *testing.T) {
	t.Run("non-admin brief is rejected without collaborator calls", func(t *testing.T) {
		stats := &stubStats{}
		f := newFacade(t, &stubResolver{}, &stubMedia{}, stats, &stubPatients{}, &stubMessageLog{})

		reply := f.HandleAdminBrief(context.Background(), adminID+1, time.Now())

		if reply.Kind != model.ReplyUnauthorized {
			t.Fatalf("kind = %q, want unauthorized", reply.Kind)
		}
		if stats.briefCalls != 0 {
			t.Error("stats must not be queried for a rejected sender")
		}
	})

	t.Run("non-admin followups rejected likewise", func(t *testing.T) {
		stats := &stubStats{}
		f := newFacade(t, &stubResolver{}, &stubMedia{}, stats, &stubPatients{}, &stubMessageLog{})

		reply := f.HandleAdminFollowups(context.Background(), 0, 10)

		if reply.Kind != model.ReplyUnauthorized {
			t.Fatalf("kind = %q, want unauthorized", reply.Kind)
		}
		if stats.followupCalls != 0 {
			t.Error("stats must not be queried for a rejected sender")
		}
	})

	t.Run("admin brief formats the four counts", func(t *testing.T) {
		day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
		stats := &stubStats{brief: &model.DailyBrief{Date: day, Chats: 40, Bookings: 5, Cancels: 2, FAQs: 7}}
		f := newFacade(t, &stubResolver{}, &stubMedia{}, stats, &stubPatients{}, &stubMessageLog{})

		reply := f.HandleAdminBrief(context.Background(), adminID, day)

		if reply.Kind != model.ReplyAdminReport {
			t.Fatalf("kind = %q", reply.Kind)
		}
		for _, want := range []string{"2026-03-14", "Chats: 40", "Bookings: 5", "Cancellations: 2", "FAQ messages: 7"} {
			if !strings.Contains(reply.Text, want) {
				t.Errorf("report %q missing %q", reply.Text, want)
			}
		}
	})

	t.Run("admin followups lists oldest first with empty fallback", func(t *testing.T) {
		stats := &stubStats{followups: []*model.Appointment{
			{PatientName: "Ada Lovelace", TimeSlotText: "Friday 3pm", Status: model.AppointmentStatusPending, CreatedAt: time.Now()},
			{PatientName: "Bob Smith", TimeSlotText: "Monday 10am", Status: model.AppointmentStatusRescheduled, CreatedAt: time.Now()},
		}}
		f := newFacade(t, &stubResolver{}, &stubMedia{}, stats, &stubPatients{}, &stubMessageLog{})

		reply := f.HandleAdminFollowups(context.Background(), adminID, 0)
		if !strings.Contains(reply.Text, "Ada Lovelace") || !strings.Contains(reply.Text, "Bob Smith") {
			t.Errorf("report %q missing rows", reply.Text)
		}

		empty := newFacade(t, &stubResolver{}, &stubMedia{}, &stubStats{}, &stubPatients{}, &stubMessageLog{})
		reply = empty.HandleAdminFollowups(context.Background(), adminID, 0)
		if !strings.Contains(reply.Text, "No pending") {
			t.Errorf("report %q, want the empty-list message", reply.Text)
		}
	})
}

func TestBotFacade_Consent(t *testing.T) {
	patients := &stubPatients{}
	f := newFacade(t, &stubResolver{}, &stubMedia{}, &stubStats{}, patients, &stubMessageLog{})

	reply := f.HandleConsent(context.Background(), 5, false)
	if patients.consentSet == nil || *patients.consentSet {
		t.Fatal("expected consent to be set to false")
	}
	if !strings.Contains(reply.Text, "opted out") {
		t.Errorf("reply = %q", reply.Text)
	}
}

func TestParseBriefDate(t *testing.T) {
	if got := ParseBriefDate(" 2026-03-14 "); !got.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}
	if got := ParseBriefDate("not-a-date"); time.Since(got) > time.Minute {
		t.Errorf("invalid input should default to now, got %v", got)
	}
	if got := ParseBriefDate(""); time.Since(got) > time.Minute {
		t.Errorf("empty input should default to now, got %v", got)
	}
}

type stubNotifier struct {
	mu   sync.Mutex
	to   []int64
	sent []string
	ch   chan struct{}
}

func (s *stubNotifier) SendMessage(ctx context.Context, chatID int64, text string) error {
	s.mu.Lock()
	s.to = append(s.to, chatID)
	s.sent = append(s.sent, text)
	s.mu.Unlock()
	if s.ch != nil {
		s.ch <- struct{}{}
	}
	return nil
}

func (s *stubNotifier) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	return nil
}

func TestBotFacade_EmergencyAlert(t *testing.T) {
	t.Run("emergency message alerts the admin chat", func(t *testing.T) {
		resolver := &stubResolver{reply: model.OutboundReply{Kind: model.ReplyCanned, Text: "call emergency services"}}
		facade := newFacade(t, resolver, &stubMedia{}, &stubStats{}, &stubPatients{}, &stubMessageLog{})
		notifier := &stubNotifier{ch: make(chan struct{}, 1)}
		facade.AttachNotifier(notifier)

		msg := &model.IncomingMessage{SenderID: 7, ChatID: 7, Username: "ada", Kind: model.KindText,
			Text: "I have chest pain, John Doe, Friday 3pm"}
		reply := facade.HandleText(context.Background(), msg)
		if reply.IsZero() {
			t.Fatal("expected a user reply")
		}

		select {
		case <-notifier.ch:
		case <-time.After(2 * time.Second):
			t.Fatal("staff alert never sent")
		}

		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		if notifier.to[0] != adminID {
			t.Errorf("alert went to %d, want admin %d", notifier.to[0], adminID)
		}
		if !strings.Contains(notifier.sent[0], "chest pain") {
			t.Errorf("alert %q does not carry the patient message", notifier.sent[0])
		}
		if !strings.Contains(notifier.sent[0], "ada") {
			t.Errorf("alert %q does not name the sender", notifier.sent[0])
		}
	})

	t.Run("non-emergency message sends no alert", func(t *testing.T) {
		resolver := &stubResolver{reply: model.OutboundReply{Kind: model.ReplyCanned, Text: "ok"}}
		facade := newFacade(t, resolver, &stubMedia{}, &stubStats{}, &stubPatients{}, &stubMessageLog{})
		notifier := &stubNotifier{}
		facade.AttachNotifier(notifier)

		facade.HandleText(context.Background(), &model.IncomingMessage{SenderID: 7, ChatID: 7, Kind: model.KindText, Text: "what are your opening hours"})
		time.Sleep(50 * time.Millisecond)

		notifier.mu.Lock()
		defer notifier.mu.Unlock()
		if len(notifier.sent) != 0 {
			t.Errorf("unexpected alert: %v", notifier.sent)
		}
	})

	t.Run("emergency without a notifier still replies", func(t *testing.T) {
		resolver := &stubResolver{reply: model.OutboundReply{Kind: model.ReplyCanned, Text: "call emergency services"}}
		facade := newFacade(t, resolver, &stubMedia{}, &stubStats{}, &stubPatients{}, &stubMessageLog{})

		reply := facade.HandleText(context.Background(), &model.IncomingMessage{SenderID: 7, ChatID: 7, Kind: model.KindText, Text: "this is an emergency"})
		if reply.IsZero() {
			t.Fatal("expected a user reply")
		}
	})
}
