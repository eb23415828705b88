package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenciapulso/go-agency-backend/internal/domain"
	"github.com/agenciapulso/go-agency-backend/internal/repo"
)

// NotificationsResponse wraps a page of notifications.
type NotificationsResponse struct {
	Items      []domain.Notification `json:"items"`
	Pagination Pagination            `json:"pagination"`
}

// ListNotifications returns the notifications for one user, newest first.
// The user id comes from the X-User-ID header, matching how the job fan-out
// addresses admins.
//
// GET /notifications
func (h *Handler) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing X-User-ID header")
		return
	}
	page, pageSize := pageParams(c)

	total, err := repo.CountNotifications(ctx, h.db, userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not count notifications")
		return
	}
	items, err := repo.ListNotificationsPage(ctx, h.db, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list notifications")
		return
	}
	ok(c, http.StatusOK, NotificationsResponse{
		Items:      items,
		Pagination: paginationOf(page, pageSize, total),
	})
}
