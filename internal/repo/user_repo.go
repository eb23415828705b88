// Package repo – User lookups.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
)

// ListAdmins returns every user holding the ADMIN role. Jobs fan their
// notifications out to this set.
func ListAdmins(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Where("role = ?", domain.RoleAdmin).
		Find(&out).Error
	return out, err
}
