package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeNotifier records every notification it is asked to deliver.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	fail error
}

type sentNotification struct {
	Kind  string
	Title string
	Body  string
}

func (f *fakeNotifier) Notify(ctx context.Context, userID, kind, title, body string) error {
	return f.record(kind, title, body)
}

func (f *fakeNotifier) NotifyAdmins(ctx context.Context, kind, title, body string) error {
	return f.record(kind, title, body)
}

func (f *fakeNotifier) record(kind, title, body string) error {
	if f.fail != nil {
		return f.fail
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{Kind: kind, Title: title, Body: body})
	return nil
}

func (f *fakeNotifier) all() []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentNotification(nil), f.sent...)
}

// fakeGen answers prompts from a queue, or with a fixed reply.
type fakeGen struct {
	replies []string
	reply   string
	err     error
	calls   int
	prompts []string
}

func (f *fakeGen) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) > 0 {
		r := f.replies[0]
		f.replies = f.replies[1:]
		return r, nil
	}
	return f.reply, nil
}
