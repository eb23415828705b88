// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for ScheduledPost.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition. The publish safety gate (daily cap,
// minimum spacing) lives in the services layer; this file only answers the
// questions that gate asks.
//
// Error semantics:
//   - When a record is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience), except the
//     look-ahead helpers NextDuePost and LastPublishedAt which translate
//     "nothing there" into a nil result because an empty queue is expected.
//   - On DB errors the raw gorm error is propagated.
//
// Transition guards:
//   - MarkPublished and MarkFailed update WHERE status = 'APPROVED'. A post
//     already in a terminal state is therefore never transitioned twice; the
//     caller sees ErrNotFound instead.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across the service
// layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateScheduledPost inserts a new APPROVED post scheduled for scheduledFor.
// The ID is a randomly generated UUID and CreatedAt is set to UTC.
func CreateScheduledPost(ctx context.Context, db *gorm.DB, topic, message string, hashtags, imageURL *string, scheduledFor time.Time) (*domain.ScheduledPost, error) {
	p := &domain.ScheduledPost{
		ID:           uuid.NewString(),
		Topic:        topic,
		Message:      message,
		Hashtags:     hashtags,
		ImageURL:     imageURL,
		Status:       domain.StatusApproved,
		ScheduledFor: scheduledFor,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// NextDuePost returns the oldest APPROVED post whose scheduled time is at or
// before now, or nil when no post is due. Publishing one post per cycle is a
// deliberate pacing decision, so only a single row is ever selected.
func NextDuePost(ctx context.Context, db *gorm.DB, now time.Time) (*domain.ScheduledPost, error) {
	var p domain.ScheduledPost
	err := db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", domain.StatusApproved, now).
		Order("scheduled_for asc").
		First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CountPublishedSince returns how many posts transitioned to PUBLISHED at or
// after since. The publisher feeds it local midnight to enforce the daily cap.
func CountPublishedSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ScheduledPost{}).
		Where("status = ? AND published_at >= ?", domain.StatusPublished, since).
		Count(&total).Error
	return total, err
}

// LastPublishedAt returns the most recent publish timestamp, or nil when
// nothing has ever been published.
func LastPublishedAt(ctx context.Context, db *gorm.DB) (*time.Time, error) {
	var p domain.ScheduledPost
	err := db.WithContext(ctx).
		Where("status = ? AND published_at IS NOT NULL", domain.StatusPublished).
		Order("published_at desc").
		First(&p).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p.PublishedAt, nil
}

// MarkPublished transitions an APPROVED post to PUBLISHED, recording the
// platform post id and publish time in the same update. If the post is
// missing or already terminal it returns ErrNotFound and changes nothing,
// which makes the PUBLISHED transition at-most-once.
func MarkPublished(ctx context.Context, db *gorm.DB, id, platformPostID string, at time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.ScheduledPost{}).
		Where("id = ? AND status = ?", id, domain.StatusApproved).
		Updates(map[string]any{
			"status":           domain.StatusPublished,
			"platform_post_id": platformPostID,
			"published_at":     at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed transitions an APPROVED post to FAILED. Failed posts are never
// retried; the same APPROVED guard as MarkPublished applies.
func MarkFailed(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).
		Model(&domain.ScheduledPost{}).
		Where("id = ? AND status = ?", id, domain.StatusApproved).
		Update("status", domain.StatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RecentPublishedTopics returns the topics of the most recently published
// posts, newest first, capped at limit. Empty topics are skipped.
func RecentPublishedTopics(ctx context.Context, db *gorm.DB, limit int) ([]string, error) {
	var posts []domain.ScheduledPost
	err := db.WithContext(ctx).
		Select("topic").
		Where("status = ?", domain.StatusPublished).
		Order("published_at desc").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	topics := make([]string, 0, len(posts))
	for _, p := range posts {
		if p.Topic != "" {
			topics = append(topics, p.Topic)
		}
	}
	return topics, nil
}

// RecentPublishedWithPlatformID returns PUBLISHED posts published at or after
// since that carry a platform post id, newest first, capped at limit. This is
// the collector's work queue.
func RecentPublishedWithPlatformID(ctx context.Context, db *gorm.DB, since time.Time, limit int) ([]domain.ScheduledPost, error) {
	var out []domain.ScheduledPost
	err := db.WithContext(ctx).
		Where("status = ? AND published_at >= ? AND platform_post_id IS NOT NULL", domain.StatusPublished, since).
		Order("published_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
