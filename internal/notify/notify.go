// Package notify implements the notification collaborator. A notification
// is persisted and emitted immediately; delivery is fire-and-forget from
// the caller's point of view and a failed emit never fails the job that
// triggered it.
//
// Admin fan-out runs the per-admin sends concurrently but waits for all of
// them before returning, so a job cycle never leaks background work.
package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/repo"
)

// Notification kinds used by the jobs.
const (
	KindTaskAssigned = "TASK_ASSIGNED"
	KindTokenAlert   = "TOKEN_ALERT"
)

// Service persists notifications and pushes them to an optional webhook.
type Service struct {
	DB *gorm.DB

	// webhook is nil when no webhook URL is configured; persistence still
	// happens, only delivery is skipped.
	webhook    *resty.Client
	webhookURL string
}

// New builds a Service. webhookURL may be empty to disable delivery.
func New(db *gorm.DB, webhookURL string) *Service {
	s := &Service{DB: db, webhookURL: webhookURL}
	if webhookURL != "" {
		s.webhook = resty.New()
	}
	return s
}

// Notify persists one notification for userID and emits it. A persistence
// error is returned; an emit error is logged and swallowed, matching the
// fire-and-forget contract.
func (s *Service) Notify(ctx context.Context, userID, kind, title, body string) error {
	n, err := repo.CreateNotification(ctx, s.DB, userID, kind, title, body)
	if err != nil {
		return fmt.Errorf("notify: persist: %w", err)
	}

	if s.webhook != nil {
		resp, err := s.webhook.R().
			SetContext(ctx).
			SetBody(n).
			Post(s.webhookURL)
		if err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("notification webhook failed")
		} else if resp.IsError() {
			log.Warn().Int("status", resp.StatusCode()).Str("user_id", userID).Msg("notification webhook rejected")
		}
	}
	return nil
}

// NotifyAdmins sends the same notification to every admin user. Sends run
// concurrently and are all awaited; individual failures are logged, not
// returned. The error covers only the admin lookup itself.
func (s *Service) NotifyAdmins(ctx context.Context, kind, title, body string) error {
	admins, err := repo.ListAdmins(ctx, s.DB)
	if err != nil {
		return fmt.Errorf("notify: list admins: %w", err)
	}

	var wg sync.WaitGroup
	for _, admin := range admins {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			if err := s.Notify(ctx, userID, kind, title, body); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("admin notification failed")
			}
		}(admin.ID)
	}
	wg.Wait()
	return nil
}
