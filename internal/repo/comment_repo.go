// Package repo – CommentLog persistence.
//
// CommentLog rows are the dedup signal for the comment responder: one row
// per external comment id, created exactly once, never updated or deleted.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
)

// HasCommentLog reports whether a decision was already recorded for the
// given external comment id. This is the responder's lookup-before-write
// idempotency check.
func HasCommentLog(ctx context.Context, db *gorm.DB, commentID string) (bool, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.CommentLog{}).
		Where("comment_id = ?", commentID).
		Count(&total).Error
	return total > 0, err
}

// CreateCommentLog records the decision for one comment. The unique index
// on comment_id backs up the lookup check; a duplicate insert surfaces as
// a DB error rather than silently overwriting the first decision.
func CreateCommentLog(ctx context.Context, db *gorm.DB, commentID string, action domain.CommentAction, reply string) (*domain.CommentLog, error) {
	l := &domain.CommentLog{
		ID:        uuid.NewString(),
		CommentID: commentID,
		Action:    action,
		Reply:     reply,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(l).Error; err != nil {
		return nil, err
	}
	return l, nil
}
