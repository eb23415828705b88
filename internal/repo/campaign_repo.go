// Package repo – ProductCampaign persistence.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
)

// ListAutoReplyCampaigns returns every PUBLISHED campaign with auto-reply
// enabled and a non-null reply template. The responder loads this set once
// per cycle rather than once per post.
func ListAutoReplyCampaigns(ctx context.Context, db *gorm.DB) ([]domain.ProductCampaign, error) {
	var out []domain.ProductCampaign
	err := db.WithContext(ctx).
		Where("status = ? AND auto_reply = ? AND reply_template IS NOT NULL", domain.CampaignPublished, true).
		Find(&out).Error
	return out, err
}

// ListDraftCampaignsWithoutPost returns DRAFT campaigns not yet linked to a
// scheduled post. This is the product job's work queue.
func ListDraftCampaignsWithoutPost(ctx context.Context, db *gorm.DB) ([]domain.ProductCampaign, error) {
	var out []domain.ProductCampaign
	err := db.WithContext(ctx).
		Where("status = ? AND scheduled_post_id IS NULL", domain.CampaignDraft).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}

// LinkCampaignToPost attaches a freshly scheduled post to a campaign and
// stores the copy the post was generated from. The campaign stays DRAFT
// until the publisher syncs it on publish.
func LinkCampaignToPost(ctx context.Context, db *gorm.DB, campaignID, scheduledPostID, generatedCopy string) error {
	res := db.WithContext(ctx).
		Model(&domain.ProductCampaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]any{
			"scheduled_post_id": scheduledPostID,
			"generated_copy":    generatedCopy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SyncCampaignPublished marks every campaign linked to scheduledPostID as
// PUBLISHED and records the platform post id. Zero affected rows is not an
// error: most posts have no campaign attached.
func SyncCampaignPublished(ctx context.Context, db *gorm.DB, scheduledPostID, platformPostID string) error {
	return db.WithContext(ctx).
		Model(&domain.ProductCampaign{}).
		Where("scheduled_post_id = ?", scheduledPostID).
		Updates(map[string]any{
			"status":           domain.CampaignPublished,
			"platform_post_id": platformPostID,
		}).Error
}
