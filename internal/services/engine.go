// Package services – Engine
//
// The autonomous content engine runs once a day: it asks the strategist for
// a plan, generates each planned post, and schedules them as approved posts
// for the publisher to pick up at their slot times. A single failing post
// does not abort the cycle.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/notify"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
)

// defaultSlot is the time of day used when the strategy names fewer slots
// than posts, or a slot does not parse.
const defaultSlot = "18:00"

// Engine turns a daily strategy into scheduled posts.
type Engine struct {
	DB         *gorm.DB
	Strategist Strategist
	Notifier   Notifier

	// RecentTopicCount is how many recent published topics seed the
	// avoidance set passed to the strategist.
	RecentTopicCount int

	Now func() time.Time
}

// NewEngine constructs an Engine with the default clock.
func NewEngine(db *gorm.DB, strat Strategist, n Notifier, recentTopics int) *Engine {
	return &Engine{
		DB:               db,
		Strategist:       strat,
		Notifier:         n,
		RecentTopicCount: recentTopics,
		Now:              time.Now,
	}
}

// RunCycle executes one engine pass: plan, generate, schedule, announce.
func (s *Engine) RunCycle(ctx context.Context) error {
	tr := otel.Tracer("services/Engine")
	ctx, span := tr.Start(ctx, "RunCycle")
	defer span.End()

	strat, err := s.Strategist.DailyStrategy(ctx)
	if err != nil {
		return fmt.Errorf("engine: strategy: %w", err)
	}

	avoid, err := repo.RecentPublishedTopics(ctx, s.DB, s.RecentTopicCount)
	if err != nil {
		return fmt.Errorf("engine: recent topics: %w", err)
	}

	titler := cases.Title(language.BrazilianPortuguese)
	now := s.Now()

	var scheduled []string
	for i := 0; i < strat.PostsToCreate && i < len(strat.Topics); i++ {
		topic := strat.Topics[i]
		focus := "conteúdo"
		if i < len(strat.FocusTypes) {
			focus = strat.FocusTypes[i]
		}
		slot := defaultSlot
		if i < len(strat.Times) {
			slot = strat.Times[i]
		}

		draft, err := s.Strategist.GeneratePost(ctx, topic, focus, avoid)
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("engine: post generation failed, skipping slot")
			continue
		}

		var hashtags *string
		if tags := normalizeHashtags(draft.Hashtags); tags != "" {
			hashtags = &tags
		}
		title := titler.String(strings.TrimSpace(draft.Topic))

		post, err := repo.CreateScheduledPost(ctx, s.DB, title, draft.Message, hashtags, nil, slotToday(now, slot))
		if err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("engine: scheduling failed, skipping slot")
			continue
		}

		// Grow the avoidance set inside the cycle so the next slot does
		// not rewrite the same theme.
		avoid = append(avoid, title)
		scheduled = append(scheduled, fmt.Sprintf("%s (%s)", title, post.ScheduledFor.Format("15:04")))
	}

	span.SetAttributes(attribute.Int("scheduled", len(scheduled)))

	if len(scheduled) > 0 {
		msg := fmt.Sprintf("%d post(s) agendados para hoje: %s", len(scheduled), strings.Join(scheduled, ", "))
		if err := s.Notifier.NotifyAdmins(ctx, notify.KindTaskAssigned, "Motor autônomo ativo", msg); err != nil {
			log.Error().Err(err).Msg("engine: admin notification failed")
		}
	}
	return nil
}

// slotToday maps an "HH:MM" slot onto today's date in local time. A slot
// that does not parse falls back to the default.
func slotToday(now time.Time, slot string) time.Time {
	t, err := time.Parse("15:04", strings.TrimSpace(slot))
	if err != nil {
		t, _ = time.Parse("15:04", defaultSlot)
	}
	return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
}

// normalizeHashtags joins tags into one space-separated string, forcing a
// single leading '#' on each and dropping empties and duplicates.
func normalizeHashtags(tags []string) string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		tag = "#" + tag
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return strings.Join(out, " ")
}
