// Package services – Collector
//
// The performance collector snapshots engagement for posts published in the
// recent window, at most once per post per day. Per-post failures are
// logged and skipped so one bad post id cannot starve the rest of the
// window.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/repo"
	"github.com/agenciapulso/go-agency-backend/internal/social"
)

// CollectorSocial is the slice of the platform client the collector needs.
type CollectorSocial interface {
	Engagement(ctx context.Context, postID string) (social.Engagement, error)
}

const collectorPlatform = "facebook"

// Collector snapshots engagement metrics for recently published posts.
type Collector struct {
	DB     *gorm.DB
	Social CollectorSocial

	// WindowDays bounds how far back published posts are considered.
	WindowDays int
	// MaxPosts caps how many posts one cycle visits, newest first.
	MaxPosts int

	Now     func() time.Time
	limiter *rate.Limiter
}

// NewCollector constructs a Collector. throttle spaces consecutive
// engagement fetches; zero disables it (tests).
func NewCollector(db *gorm.DB, s CollectorSocial, windowDays, maxPosts int, throttle time.Duration) *Collector {
	lim := rate.NewLimiter(rate.Inf, 1)
	if throttle > 0 {
		lim = rate.NewLimiter(rate.Every(throttle), 1)
	}
	return &Collector{
		DB:         db,
		Social:     s,
		WindowDays: windowDays,
		MaxPosts:   maxPosts,
		Now:        time.Now,
		limiter:    lim,
	}
}

// RunCycle visits each published post in the window and records one
// engagement snapshot if none was taken today.
func (s *Collector) RunCycle(ctx context.Context) error {
	tr := otel.Tracer("services/Collector")
	ctx, span := tr.Start(ctx, "RunCycle")
	defer span.End()

	now := s.Now()
	since := now.AddDate(0, 0, -s.WindowDays)

	posts, err := repo.RecentPublishedWithPlatformID(ctx, s.DB, since, s.MaxPosts)
	if err != nil {
		return fmt.Errorf("collector: list posts: %w", err)
	}

	collected := 0
	for _, post := range posts {
		done, err := repo.HasSnapshotSince(ctx, s.DB, post.ID, localMidnight(now))
		if err != nil {
			return fmt.Errorf("collector: snapshot lookup: %w", err)
		}
		if done {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		eng, err := s.Social.Engagement(ctx, *post.PlatformPostID)
		if err != nil {
			log.Error().Err(err).Str("post_id", post.ID).Msg("collector: engagement fetch failed, skipping post")
			continue
		}

		score := engagementRate(eng.Likes, eng.Comments, eng.Shares)
		if _, err := repo.CreateSnapshot(ctx, s.DB, post.ID, collectorPlatform, eng.Likes, eng.Comments, eng.Shares, score); err != nil {
			log.Error().Err(err).Str("post_id", post.ID).Msg("collector: snapshot insert failed, skipping post")
			continue
		}
		collected++
	}

	span.SetAttributes(attribute.Int("snapshots", collected))
	log.Info().Int("snapshots", collected).Int("window_posts", len(posts)).Msg("collector cycle done")
	return nil
}

// engagementRate scores a snapshot as total interactions relative to likes.
// No interactions at all scores zero.
func engagementRate(likes, comments, shares int) float64 {
	total := likes + comments + shares
	if total == 0 {
		return 0
	}
	denom := likes
	if denom < 1 {
		denom = 1
	}
	return float64(total) / float64(denom)
}
