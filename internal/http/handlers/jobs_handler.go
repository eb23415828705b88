package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agenciapulso/go-agency-backend/internal/scheduler"
)

// JobRegistry is the slice of the scheduler the admin surface needs.
type JobRegistry interface {
	Status() []scheduler.JobStatus
	Run(name string) error
}

// Handler bundles the dependencies of all admin endpoints.
type Handler struct {
	jobs JobRegistry
	db   *gorm.DB
}

// New constructs a Handler.
func New(jobs JobRegistry, db *gorm.DB) *Handler {
	return &Handler{jobs: jobs, db: db}
}

// ListJobs returns the status of every registered job.
//
// GET /jobs
func (h *Handler) ListJobs(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"jobs": h.jobs.Status()})
}

// RunJob triggers one job synchronously by name. An unknown name is 404; a
// job already running is 409; a failed cycle is reported as 500 with the
// job error message.
//
// POST /jobs/:name/run
func (h *Handler) RunJob(c *gin.Context) {
	name := c.Param("name")
	err := h.jobs.Run(name)
	switch {
	case err == nil:
		ok(c, http.StatusOK, gin.H{"job": name, "status": "completed"})
	case errors.Is(err, scheduler.ErrUnknownJob):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "unknown job")
	case errors.Is(err, scheduler.ErrJobRunning):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeJobFailed, err.Error())
	}
}
