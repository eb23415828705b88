package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
	"github.com/agenciapulso/go-agency-backend/internal/utils"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// pageParams reads and clamps the page/page_size query parameters.
func pageParams(c *gin.Context) (page, pageSize int) {
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = defaultPage
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func paginationOf(page, pageSize int, total int64) Pagination {
	pages := int(math.Ceil(float64(total) / float64(pageSize)))
	if pages < 1 {
		pages = 1
	}
	return Pagination{Page: page, PageSize: pageSize, TotalItems: total, TotalPages: pages}
}

// MetricsReportsResponse wraps a page of metrics reports.
type MetricsReportsResponse struct {
	Items      []domain.MetricsReport `json:"items"`
	Pagination Pagination             `json:"pagination"`
}

// ListMetricsReports returns stored metrics reports, newest first.
//
// GET /reports/metrics
func (h *Handler) ListMetricsReports(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pageParams(c)

	total, err := repo.CountMetricsReports(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not count reports")
		return
	}
	items, err := repo.ListMetricsReportsPage(ctx, h.db, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list reports")
		return
	}
	ok(c, http.StatusOK, MetricsReportsResponse{
		Items:      items,
		Pagination: paginationOf(page, pageSize, total),
	})
}

// TrendReportsResponse wraps a page of trend reports.
type TrendReportsResponse struct {
	Items      []domain.TrendReport `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

// ListTrendReports returns stored trending-topics reports, newest first.
//
// GET /reports/trends
func (h *Handler) ListTrendReports(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := pageParams(c)

	total, err := repo.CountTrendReports(ctx, h.db)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not count reports")
		return
	}
	items, err := repo.ListTrendReportsPage(ctx, h.db, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list reports")
		return
	}
	ok(c, http.StatusOK, TrendReportsResponse{
		Items:      items,
		Pagination: paginationOf(page, pageSize, total),
	})
}
