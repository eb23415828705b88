// Package repo – PostPerformance persistence.
//
// Snapshots are deduplicated per (post, local calendar day) by a lookup
// before insert; there is deliberately no hard uniqueness constraint, per
// the collector's best-effort contract.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
)

// HasSnapshotSince reports whether a performance snapshot for the post was
// already collected at or after since (typically local midnight).
func HasSnapshotSince(ctx context.Context, db *gorm.DB, scheduledPostID string, since time.Time) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.PostPerformance{}).
		Where("scheduled_post_id = ? AND collected_at >= ?", scheduledPostID, since).
		Count(&total).Error
	return total > 0, err
}

// CreateSnapshot persists one engagement snapshot for a post.
func CreateSnapshot(ctx context.Context, db *gorm.DB, scheduledPostID, platform string, likes, comments, shares int, rate float64) (*domain.PostPerformance, error) {
	s := &domain.PostPerformance{
		ID:              uuid.NewString(),
		ScheduledPostID: scheduledPostID,
		Platform:        platform,
		Likes:           likes,
		Comments:        comments,
		Shares:          shares,
		EngagementRate:  rate,
		CollectedAt:     time.Now(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// TopPerformingSnapshots returns the snapshots with the most likes, best
// first, with their posts preloaded. Used by the analyzer and the admin
// reports endpoint.
func TopPerformingSnapshots(ctx context.Context, db *gorm.DB, limit int) ([]domain.PostPerformance, error) {
	var out []domain.PostPerformance
	err := db.WithContext(ctx).
		Preload("ScheduledPost").
		Order("likes desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
