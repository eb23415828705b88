package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/agenciapulso/go-agency-backend/internal/notify"
	"github.com/agenciapulso/go-agency-backend/internal/social"
)

// fakeTokenSocial drives the monitor through each credential scenario.
type fakeTokenSocial struct {
	hasToken bool
	status   social.TokenStatus
	introErr error
	renewals int
	renewErr error
}

func (f *fakeTokenSocial) HasToken() bool { return f.hasToken }

func (f *fakeTokenSocial) IntrospectToken(ctx context.Context) (social.TokenStatus, error) {
	return f.status, f.introErr
}

func (f *fakeTokenSocial) RenewDataAccess(ctx context.Context) error {
	f.renewals++
	return f.renewErr
}

func newTestMonitor(s *fakeTokenSocial, n *fakeNotifier, now time.Time) *TokenMonitor {
	m := NewTokenMonitor(s, n)
	m.Now = func() time.Time { return now }
	return m
}

func in(days int, from time.Time) *time.Time {
	t := from.AddDate(0, 0, days).Add(time.Hour)
	return &t
}

func TestTokenMonitor_MissingToken(t *testing.T) {
	notifier := &fakeNotifier{}
	m := newTestMonitor(&fakeTokenSocial{hasToken: false}, notifier, time.Now())

	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatalf("cycle: %v", err)
	}
	sent := notifier.all()
	if len(sent) != 1 || sent[0].Kind != notify.KindTokenAlert {
		t.Fatalf("expected one token alert, got %+v", sent)
	}
}

func TestTokenMonitor_InvalidToken(t *testing.T) {
	notifier := &fakeNotifier{}
	m := newTestMonitor(&fakeTokenSocial{hasToken: true, status: social.TokenStatus{Valid: false}}, notifier, time.Now())

	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	sent := notifier.all()
	if len(sent) != 1 || !strings.Contains(sent[0].Title, "EXPIRADO") {
		t.Fatalf("expected expired alert, got %+v", sent)
	}
}

func TestTokenMonitor_UrgentAtSixDays(t *testing.T) {
	now := time.Now()
	notifier := &fakeNotifier{}
	s := &fakeTokenSocial{hasToken: true, status: social.TokenStatus{
		Valid:     true,
		ExpiresAt: in(6, now),
	}}
	m := newTestMonitor(s, notifier, now)

	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	sent := notifier.all()
	if len(sent) != 1 {
		t.Fatalf("expected one alert, got %d", len(sent))
	}
	if !strings.Contains(sent[0].Body, "URGENTE") {
		t.Fatalf("six-day alert not urgent: %q", sent[0].Body)
	}
}

func TestTokenMonitor_AdvisoryAtTwelveDays(t *testing.T) {
	now := time.Now()
	notifier := &fakeNotifier{}
	s := &fakeTokenSocial{hasToken: true, status: social.TokenStatus{
		Valid:     true,
		ExpiresAt: in(12, now),
	}}
	m := newTestMonitor(s, notifier, now)

	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	sent := notifier.all()
	if len(sent) != 1 {
		t.Fatalf("expected one alert, got %d", len(sent))
	}
	if strings.Contains(sent[0].Body, "URGENTE") {
		t.Fatalf("twelve-day alert must be advisory: %q", sent[0].Body)
	}
}

func TestTokenMonitor_SilentAtTwentyDays(t *testing.T) {
	now := time.Now()
	notifier := &fakeNotifier{}
	s := &fakeTokenSocial{hasToken: true, status: social.TokenStatus{
		Valid:     true,
		ExpiresAt: in(20, now),
	}}
	m := newTestMonitor(s, notifier, now)

	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sent := notifier.all(); len(sent) != 0 {
		t.Fatalf("healthy token raised alerts: %+v", sent)
	}
}

func TestTokenMonitor_DataAccessRenewalAndAdvisory(t *testing.T) {
	now := time.Now()
	notifier := &fakeNotifier{}
	s := &fakeTokenSocial{hasToken: true, status: social.TokenStatus{
		Valid:               true,
		ExpiresAt:           in(60, now),
		DataAccessExpiresAt: in(10, now),
	}}
	m := newTestMonitor(s, notifier, now)

	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.renewals != 1 {
		t.Fatalf("renewals = %d; want 1", s.renewals)
	}
	sent := notifier.all()
	if len(sent) != 1 || !strings.Contains(sent[0].Title, "dados") {
		t.Fatalf("expected data-access advisory, got %+v", sent)
	}
}

func TestTokenMonitor_RenewalFailureSwallowed(t *testing.T) {
	now := time.Now()
	notifier := &fakeNotifier{}
	s := &fakeTokenSocial{
		hasToken: true,
		status: social.TokenStatus{
			Valid:               true,
			ExpiresAt:           in(60, now),
			DataAccessExpiresAt: in(25, now),
		},
		renewErr: context.DeadlineExceeded,
	}
	m := newTestMonitor(s, notifier, now)

	// Renewal runs (25 <= 30) and fails, but the cycle stays green and no
	// advisory fires (25 > 15).
	if err := m.RunCycle(context.Background()); err != nil {
		t.Fatalf("renewal failure must not fail the cycle: %v", err)
	}
	if s.renewals != 1 {
		t.Fatalf("renewals = %d; want 1", s.renewals)
	}
	if sent := notifier.all(); len(sent) != 0 {
		t.Fatalf("unexpected alerts: %+v", sent)
	}
}
