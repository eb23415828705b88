// Package services – Publisher
//
// This file implements the safety gate and publish executor. Each cycle it
// selects at most one due APPROVED post, checks the daily cap and minimum
// spacing, publishes through the platform collaborator, and transitions the
// post exactly once. Any failure after selection converts into a best-effort
// FAILED transition; the job never lets an error escape uncontrolled, so one
// bad cycle cannot stop future cycles.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/notify"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
)

// PublisherSocial is the slice of the platform client the publisher needs.
type PublisherSocial interface {
	PublishText(ctx context.Context, message string) (string, error)
	PublishPhoto(ctx context.Context, message, imageURL string) (string, error)
}

// Notifier delivers fire-and-forget notifications; failures inside it are
// logged by the implementation, never surfaced to jobs.
type Notifier interface {
	Notify(ctx context.Context, userID, kind, title, body string) error
	NotifyAdmins(ctx context.Context, kind, title, body string) error
}

// Publisher enforces the publish safety limits and executes publishes.
type Publisher struct {
	DB       *gorm.DB
	Social   PublisherSocial
	Notifier Notifier

	// MaxPostsPerDay caps publishes counted since local midnight.
	MaxPostsPerDay int
	// MinInterval is the minimum spacing between two publishes.
	MinInterval time.Duration

	// Now is swapped in tests; defaults to time.Now.
	Now func() time.Time
}

// NewPublisher constructs a Publisher with the given safety limits.
func NewPublisher(db *gorm.DB, social PublisherSocial, notifier Notifier, maxPerDay int, minInterval time.Duration) *Publisher {
	return &Publisher{
		DB:             db,
		Social:         social,
		Notifier:       notifier,
		MaxPostsPerDay: maxPerDay,
		MinInterval:    minInterval,
		Now:            time.Now,
	}
}

// RunCycle performs one publish check. A cycle with nothing due, a reached
// daily cap, or an unmet spacing requirement is a silent no-op. The returned
// error is informational for the registry; the in-flight post has already
// been marked FAILED by then.
func (s *Publisher) RunCycle(ctx context.Context) error {
	tr := otel.Tracer("services/Publisher")
	ctx, span := tr.Start(ctx, "RunCycle")
	defer span.End()

	now := s.Now()

	post, err := repo.NextDuePost(ctx, s.DB, now)
	if err != nil {
		return fmt.Errorf("publisher: select due post: %w", err)
	}
	if post == nil {
		return nil
	}
	span.SetAttributes(attribute.String("post.id", post.ID))

	// Daily cap, counted since local midnight.
	published, err := repo.CountPublishedSince(ctx, s.DB, localMidnight(now))
	if err != nil {
		return s.failPost(ctx, post.ID, fmt.Errorf("publisher: count published: %w", err))
	}
	if published >= int64(s.MaxPostsPerDay) {
		log.Info().
			Int("max_per_day", s.MaxPostsPerDay).
			Msg("daily publish cap reached, waiting for tomorrow")
		return nil
	}

	// Minimum spacing since the most recent publish.
	last, err := repo.LastPublishedAt(ctx, s.DB)
	if err != nil {
		return s.failPost(ctx, post.ID, fmt.Errorf("publisher: last published: %w", err))
	}
	if last != nil {
		if gap := now.Sub(*last); gap < s.MinInterval {
			log.Info().
				Dur("gap", gap).
				Dur("min_interval", s.MinInterval).
				Msg("minimum publish interval not reached")
			return nil
		}
	}

	// Build the outgoing message: body plus hashtags when present.
	message := post.Message
	if post.Hashtags != nil && *post.Hashtags != "" {
		message = message + "\n\n" + *post.Hashtags
	}

	var platformID string
	if post.ImageURL != nil && *post.ImageURL != "" {
		platformID, err = s.Social.PublishPhoto(ctx, message, *post.ImageURL)
	} else {
		platformID, err = s.Social.PublishText(ctx, message)
	}
	if err != nil {
		return s.failPost(ctx, post.ID, fmt.Errorf("%w: %v", ErrPublishFailed, err))
	}

	if err := repo.MarkPublished(ctx, s.DB, post.ID, platformID, now); err != nil {
		return s.failPost(ctx, post.ID, fmt.Errorf("publisher: mark published: %w", err))
	}

	// Sync the linked product campaign, if any.
	if err := repo.SyncCampaignPublished(ctx, s.DB, post.ID, platformID); err != nil {
		log.Error().Err(err).Str("post_id", post.ID).Msg("campaign sync failed after publish")
	}

	log.Info().
		Str("post_id", post.ID).
		Str("platform_post_id", platformID).
		Str("topic", post.Topic).
		Msg("post published")

	subject := post.Topic
	if subject == "" {
		subject = excerpt(post.Message, 50)
	}
	if err := s.Notifier.NotifyAdmins(ctx, notify.KindTaskAssigned, "Post publicado!",
		fmt.Sprintf("%q foi publicado na página", subject)); err != nil {
		log.Error().Err(err).Msg("publish notification failed")
	}
	return nil
}

// failPost marks the in-flight post FAILED (best effort: a post that
// already left APPROVED is never touched again) and returns cause for the
// registry to record. The mark error itself is only logged.
func (s *Publisher) failPost(ctx context.Context, postID string, cause error) error {
	if err := repo.MarkFailed(ctx, s.DB, postID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		log.Error().Err(err).Str("post_id", postID).Msg("could not mark post FAILED")
	}
	log.Error().Err(cause).Str("post_id", postID).Msg("publish cycle failed")
	return cause
}

// localMidnight truncates t to the start of its local calendar day.
func localMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// excerpt returns at most n runes of s.
func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
