package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"telegram-clinic-support/internal/domain"
	"telegram-clinic-support/internal/domain/model"
	"telegram-clinic-support/internal/domain/ports/repository"
)

// In-memory repositories for developer mode: when no database is
// configured the bot still runs end to end, it just forgets everything
// on restart. Same contracts as the Postgres repos.

var _ repository.PatientRepository = (*PatientRepo)(nil)

type PatientRepo struct {
	mu   sync.RWMutex
	byTg map[int64]*model.Patient
}

func NewPatientRepo() *PatientRepo {
	return &PatientRepo{byTg: map[int64]*model.Patient{}}
}

func (m *PatientRepo) Save(ctx context.Context, p *model.Patient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.byTg[p.TelegramID] = &cp
	return nil
}

func (m *PatientRepo) FindByTelegramID(ctx context.Context, tgID int64) (*model.Patient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byTg[tgID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *PatientRepo) SetConsent(ctx context.Context, tgID int64, consent bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byTg[tgID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Consent = consent
	p.LastActiveAt = time.Now()
	return nil
}

var _ repository.AppointmentRepository = (*AppointmentRepo)(nil)

type AppointmentRepo struct {
	mu   sync.RWMutex
	byID map[string]*model.Appointment
}

func NewAppointmentRepo() *AppointmentRepo {
	return &AppointmentRepo{byID: map[string]*model.Appointment{}}
}

func (m *AppointmentRepo) Save(ctx context.Context, a *model.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *AppointmentRepo) FindByStatuses(ctx context.Context, statuses []model.AppointmentStatus, limit int) ([]*model.Appointment, error) {
	if limit <= 0 {
		limit = 20
	}
	wanted := map[model.AppointmentStatus]struct{}{}
	for _, s := range statuses {
		wanted[s] = struct{}{}
	}

	m.mu.RLock()
	out := make([]*model.Appointment, 0, len(m.byID))
	for _, a := range m.byID {
		if _, ok := wanted[a.Status]; ok {
			cp := *a
			out = append(out, &cp)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *AppointmentRepo) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.byID {
		if within(a.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

func (m *AppointmentRepo) CountStatusBetween(ctx context.Context, status model.AppointmentStatus, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, a := range m.byID {
		if a.Status == status && within(a.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

var _ repository.MessageLogRepository = (*MessageLogRepo)(nil)

type MessageLogRepo struct {
	mu      sync.RWMutex
	entries []*model.MessageLog
}

func NewMessageLogRepo() *MessageLogRepo {
	return &MessageLogRepo{}
}

func (m *MessageLogRepo) Save(ctx context.Context, entry *model.MessageLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *entry
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *MessageLogRepo) CountBetween(ctx context.Context, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		if within(e.CreatedAt, from, to) {
			n++
		}
	}
	return n, nil
}

func (m *MessageLogRepo) CountTextMatchBetween(ctx context.Context, substrings []string, from, to time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, e := range m.entries {
		if !within(e.CreatedAt, from, to) {
			continue
		}
		lower := strings.ToLower(e.Text)
		for _, sub := range substrings {
			if strings.Contains(lower, strings.ToLower(sub)) {
				n++
				break
			}
		}
	}
	return n, nil
}

// within reports t in the inclusive [from, to] window.
func within(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
