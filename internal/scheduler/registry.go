// Package scheduler runs the automation jobs on cron schedules and exposes
// their status to the admin surface. Each job is a named entry with a cron
// spec and a handler; the registry guarantees per-job mutual exclusion (a
// tick that fires while the previous run of the same job is still going is
// dropped), records outcomes, and supports manual out-of-band triggering.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Handler is one job cycle. Errors are recorded and logged; they never
// stop the schedule.
type Handler func(ctx context.Context) error

var (
	jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agency_job_runs_total",
		Help: "Job executions by name and outcome.",
	}, []string{"job", "outcome"})
	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agency_job_duration_seconds",
		Help:    "Job execution duration by name.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
)

// jobEntry is the registry's record of one job.
type jobEntry struct {
	name      string
	spec      string
	handler   Handler
	runOnBoot bool

	mu        sync.Mutex
	isRunning bool
	lastRun   time.Time
	lastError string
}

// JobStatus is the externally visible state of one job.
type JobStatus struct {
	Name      string    `json:"name"`
	Spec      string    `json:"spec"`
	Running   bool      `json:"running"`
	LastRun   time.Time `json:"last_run"`
	LastError string    `json:"last_error,omitempty"`
}

// ErrUnknownJob is returned by Run for a name that was never registered.
var ErrUnknownJob = fmt.Errorf("scheduler: unknown job")

// ErrJobRunning is returned by Run when the job is already mid-cycle.
var ErrJobRunning = fmt.Errorf("scheduler: job already running")

// Registry owns the cron runner and the job table.
type Registry struct {
	cron *cron.Cron
	jobs map[string]*jobEntry

	baseCtx context.Context
	cancel  context.CancelFunc
}

// New creates an empty registry. Jobs are added with Register before Start.
func New() *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		cron:    cron.New(),
		jobs:    make(map[string]*jobEntry),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Register adds a job under a unique name. runOnBoot jobs execute once,
// synchronously, when Start is called, before the cron schedule begins.
func (r *Registry) Register(name, spec string, runOnBoot bool, h Handler) error {
	if _, dup := r.jobs[name]; dup {
		return fmt.Errorf("scheduler: duplicate job %q", name)
	}
	entry := &jobEntry{name: name, spec: spec, handler: h, runOnBoot: runOnBoot}
	if _, err := r.cron.AddFunc(spec, func() { r.execute(entry) }); err != nil {
		return fmt.Errorf("scheduler: bad spec %q for %q: %w", spec, name, err)
	}
	r.jobs[name] = entry
	return nil
}

// Start runs boot jobs and then starts the cron schedule.
func (r *Registry) Start() {
	for _, entry := range r.sorted() {
		if entry.runOnBoot {
			r.execute(entry)
		}
	}
	r.cron.Start()
	log.Info().Int("jobs", len(r.jobs)).Msg("scheduler started")
}

// Stop halts the schedule and cancels in-flight job contexts. It returns
// once cron's own bookkeeping has drained; handlers observe cancellation
// through their context.
func (r *Registry) Stop() {
	ctx := r.cron.Stop()
	r.cancel()
	<-ctx.Done()
	log.Info().Msg("scheduler stopped")
}

// Run triggers one job by name, synchronously. A job already running is
// not started twice; the call reports the skip as an error so the admin
// surface can signal a conflict.
func (r *Registry) Run(name string) error {
	entry, ok := r.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	if !r.execute(entry) {
		return fmt.Errorf("%w: %q", ErrJobRunning, name)
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.lastError != "" {
		return fmt.Errorf("scheduler: job %q failed: %s", name, entry.lastError)
	}
	return nil
}

// Status returns a stable-ordered snapshot of every job's state.
func (r *Registry) Status() []JobStatus {
	out := make([]JobStatus, 0, len(r.jobs))
	for _, entry := range r.sorted() {
		entry.mu.Lock()
		out = append(out, JobStatus{
			Name:      entry.name,
			Spec:      entry.spec,
			Running:   entry.isRunning,
			LastRun:   entry.lastRun,
			LastError: entry.lastError,
		})
		entry.mu.Unlock()
	}
	return out
}

// execute runs one job cycle with overlap protection. It reports false
// when the job was already running and the tick was dropped.
func (r *Registry) execute(entry *jobEntry) bool {
	entry.mu.Lock()
	if entry.isRunning {
		entry.mu.Unlock()
		log.Warn().Str("job", entry.name).Msg("tick skipped, previous run still active")
		jobRuns.WithLabelValues(entry.name, "skipped").Inc()
		return false
	}
	entry.isRunning = true
	entry.mu.Unlock()

	tr := otel.Tracer("scheduler")
	ctx, span := tr.Start(r.baseCtx, "job/"+entry.name)
	span.SetAttributes(attribute.String("job.name", entry.name))
	start := time.Now()

	err := entry.handler(ctx)

	elapsed := time.Since(start)
	jobDuration.WithLabelValues(entry.name).Observe(elapsed.Seconds())
	span.End()

	entry.mu.Lock()
	entry.isRunning = false
	entry.lastRun = start
	entry.lastError = ""
	if err != nil {
		entry.lastError = err.Error()
	}
	entry.mu.Unlock()

	if err != nil {
		jobRuns.WithLabelValues(entry.name, "error").Inc()
		log.Error().Err(err).Str("job", entry.name).Dur("elapsed", elapsed).Msg("job failed")
	} else {
		jobRuns.WithLabelValues(entry.name, "ok").Inc()
		log.Info().Str("job", entry.name).Dur("elapsed", elapsed).Msg("job done")
	}
	return true
}

func (r *Registry) sorted() []*jobEntry {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*jobEntry, 0, len(names))
	for _, name := range names {
		out = append(out, r.jobs[name])
	}
	return out
}
