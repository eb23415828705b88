// Package repo – MetricsReport and TrendReport persistence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
)

// CreateMetricsReport persists one metrics-analyzer report.
func CreateMetricsReport(ctx context.Context, db *gorm.DB, r *domain.MetricsReport) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(r).Error
}

// CountMetricsReports returns the total number of stored metrics reports.
func CountMetricsReports(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.MetricsReport{}).Count(&total).Error
	return total, err
}

// ListMetricsReportsPage returns a page of metrics reports, newest first.
func ListMetricsReportsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.MetricsReport, error) {
	var out []domain.MetricsReport
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// CreateTrendReport persists one weekly trending-topics report.
func CreateTrendReport(ctx context.Context, db *gorm.DB, trendsJSON string) (*domain.TrendReport, error) {
	r := &domain.TrendReport{
		ID:        uuid.NewString(),
		Trends:    trendsJSON,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}
	return r, nil
}

// CountTrendReports returns the total number of stored trend reports.
func CountTrendReports(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.TrendReport{}).Count(&total).Error
	return total, err
}

// ListTrendReportsPage returns a page of trend reports, newest first.
func ListTrendReportsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.TrendReport, error) {
	var out []domain.TrendReport
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
