// Package orchestrator owns the scraping job lifecycle: it validates and
// creates jobs, drives one background execution per started job, runs the
// cleaning pipeline over the scraped batches, and records the outcome.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lead-scraper/internal/config"
	"lead-scraper/internal/models"
	"lead-scraper/internal/pipeline"
	"lead-scraper/internal/report"
	"lead-scraper/internal/scraper"
	"lead-scraper/internal/store"
	"lead-scraper/internal/telemetry"
)

// JobStore is the persistence surface the orchestrator needs. *store.Store
// satisfies it; tests use in-memory fakes.
type JobStore interface {
	CreateJob(ctx context.Context, p store.CreateJobParams) (models.Job, error)
	GetJob(ctx context.Context, id string) (models.Job, error)
	MarkRunning(ctx context.Context, id string, startedAt time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id string, p store.CompleteJobParams) error
	MarkFailed(ctx context.Context, id string, errMsg string, completedAt time.Time) error
	MarkCancelled(ctx context.Context, id string, completedAt time.Time) (bool, error)
	InsertBusinesses(ctx context.Context, jobID string, businesses []models.Business) error
}

// execution is the in-memory handle for one running job. It is never
// persisted and exists only between Start and the end of the run.
type execution struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Orchestrator coordinates job state, executions, and the pipeline stages.
type Orchestrator struct {
	cfg       config.Config
	store     JobStore
	extractor scraper.Extractor
	exporter  report.Exporter
	logger    *slog.Logger

	mu         sync.Mutex
	executions map[string]*execution
}

// New wires an orchestrator from its collaborators.
func New(cfg config.Config, st JobStore, ex scraper.Extractor, rep report.Exporter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:        cfg,
		store:      st,
		extractor:  ex,
		exporter:   rep,
		logger:     logger,
		executions: make(map[string]*execution),
	}
}

// CreateRequest collects the caller-supplied job parameters. Zero values
// for business type and criteria fall back to configured defaults.
type CreateRequest struct {
	Name            string
	Locations       []string
	BusinessType    string
	MaxReviews      int
	MinQualityScore float64
}

// Create validates the request and persists a new pending job.
func (o *Orchestrator) Create(ctx context.Context, req CreateRequest) (models.Job, error) {
	if req.Name == "" {
		return models.Job{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(req.Locations) == 0 {
		return models.Job{}, &ValidationError{Field: "locations", Reason: "at least one location is required"}
	}
	for _, loc := range req.Locations {
		if loc == "" {
			return models.Job{}, &ValidationError{Field: "locations", Reason: "locations must not be empty strings"}
		}
	}
	if req.BusinessType == "" {
		req.BusinessType = o.cfg.DefaultBusinessType
	}
	if req.MaxReviews <= 0 {
		req.MaxReviews = o.cfg.DefaultMaxReviews
	}
	if req.MinQualityScore <= 0 {
		req.MinQualityScore = o.cfg.DefaultMinQualityScore
	}

	job, err := o.store.CreateJob(ctx, store.CreateJobParams{
		Name:            req.Name,
		Locations:       req.Locations,
		BusinessType:    req.BusinessType,
		MaxReviews:      req.MaxReviews,
		MinQualityScore: req.MinQualityScore,
	})
	if err != nil {
		return models.Job{}, fmt.Errorf("create job: %w", err)
	}
	telemetry.JobsCreated.Inc()
	o.logger.Info("job.created", "id", job.ID, "name", job.Name, "locations", len(job.Locations))
	return job, nil
}

// Start registers an execution handle for the job and launches its run in
// a background goroutine. It does not block on the run. The check-and-
// register step is a single mutex-guarded critical section, so two
// concurrent Start calls for the same id cannot both proceed.
func (o *Orchestrator) Start(ctx context.Context, id string) error {
	runCtx, cancel := context.WithCancel(context.Background())
	exec := &execution{cancel: cancel, done: make(chan struct{})}

	o.mu.Lock()
	if _, exists := o.executions[id]; exists {
		o.mu.Unlock()
		cancel()
		return ErrAlreadyRunning
	}
	o.executions[id] = exec
	o.mu.Unlock()

	job, err := o.store.GetJob(ctx, id)
	if err != nil {
		o.removeExecution(id)
		cancel()
		return err
	}
	if !models.CanTransition(job.Status, models.StatusRunning) {
		o.removeExecution(id)
		cancel()
		return fmt.Errorf("%w: status is %s", ErrInvalidState, job.Status)
	}

	startedAt := time.Now().UTC()
	ok, err := o.store.MarkRunning(ctx, id, startedAt)
	if err != nil {
		o.removeExecution(id)
		cancel()
		return fmt.Errorf("transition to running: %w", err)
	}
	if !ok {
		// Lost a race with a concurrent cancel or a stale read.
		o.removeExecution(id)
		cancel()
		return fmt.Errorf("%w: job left pending state", ErrInvalidState)
	}

	telemetry.JobsStarted.Inc()
	telemetry.ActiveExecutions.Inc()
	o.logger.Info("job.started", "id", id, "name", job.Name)

	go func() {
		defer close(exec.done)
		defer telemetry.ActiveExecutions.Dec()
		defer o.removeExecution(id)
		o.run(runCtx, job)
	}()
	return nil
}

// run executes one job to completion. Errors never propagate out; they are
// recorded on the job row. Cancellation is observed cooperatively between
// locations and between pipeline stages; the scrape request itself also
// carries ctx, so an in-flight call unwinds early on cancel.
func (o *Orchestrator) run(ctx context.Context, job models.Job) {
	var raw []models.RawBusiness
	for _, location := range job.Locations {
		if ctx.Err() != nil {
			o.logger.Info("job.cancelled", "id", job.ID, "stage", "scrape")
			return
		}
		scrapeStart := time.Now()
		batch, err := o.extractor.Scrape(ctx, location, job.BusinessType)
		telemetry.ScrapeDuration.Observe(time.Since(scrapeStart).Seconds())
		if err != nil {
			if ctx.Err() != nil {
				o.logger.Info("job.cancelled", "id", job.ID, "stage", "scrape")
				return
			}
			o.fail(job, fmt.Errorf("scrape %q: %w", location, err))
			return
		}
		telemetry.ListingsScraped.Add(float64(len(batch)))
		raw = append(raw, batch...)
	}

	if ctx.Err() != nil {
		o.logger.Info("job.cancelled", "id", job.ID, "stage", "pipeline")
		return
	}

	scored := pipeline.Process(raw)
	if err := o.store.InsertBusinesses(ctx, job.ID, scored); err != nil {
		o.fail(job, fmt.Errorf("persist businesses: %w", err))
		return
	}

	if ctx.Err() != nil {
		o.logger.Info("job.cancelled", "id", job.ID, "stage", "export")
		return
	}

	filtered := pipeline.SelectAndRank(scored, job.MaxReviews, job.MinQualityScore)
	artifacts, err := o.exporter.Export(ctx, filtered, report.Metadata{
		JobID:       job.ID,
		JobName:     job.Name,
		GeneratedAt: time.Now().UTC(),
		Locations:   job.Locations,
	})
	if err != nil {
		if ctx.Err() != nil {
			o.logger.Info("job.cancelled", "id", job.ID, "stage", "export")
			return
		}
		o.fail(job, fmt.Errorf("export reports: %w", err))
		return
	}
	telemetry.ListingsExported.Add(float64(len(filtered)))

	err = o.store.MarkCompleted(context.Background(), job.ID, store.CompleteJobParams{
		TotalFound:    len(scored),
		TotalMatching: len(filtered),
		ReportPath:    artifacts.ReportPath,
		CSVPath:       artifacts.CSVPath,
		JSONPath:      artifacts.JSONPath,
		CompletedAt:   time.Now().UTC(),
	})
	if err != nil {
		if ctx.Err() != nil {
			// Cancelled between export and the completion write; the row is
			// already terminal.
			o.logger.Info("job.cancelled", "id", job.ID, "stage", "complete")
			return
		}
		o.fail(job, fmt.Errorf("record completion: %w", err))
		return
	}
	telemetry.JobsCompleted.Inc()
	o.logger.Info("job.completed", "id", job.ID, "found", len(scored), "matching", len(filtered))
}

// fail records an execution failure on the job row. It uses a fresh
// context: the run context may already be cancelled, and the status write
// must still land.
func (o *Orchestrator) fail(job models.Job, cause error) {
	o.logger.Error("job.failed", "id", job.ID, "error", cause)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := o.store.MarkFailed(ctx, job.ID, cause.Error(), time.Now().UTC()); err != nil {
		o.logger.Error("job.fail_write_failed", "id", job.ID, "error", err)
	}
	telemetry.JobsFailed.Inc()
}

// Cancel moves a pending or running job to cancelled and signals its
// execution, if any. The signal is cooperative: the run observes it at the
// next stage boundary (and in-flight scrape requests unwind via ctx). The
// execution handle is removed by the run goroutine when it exits.
func (o *Orchestrator) Cancel(ctx context.Context, id string) error {
	if _, err := o.store.GetJob(ctx, id); err != nil {
		return err
	}
	ok, err := o.store.MarkCancelled(ctx, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("transition to cancelled: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: job is already terminal", ErrInvalidState)
	}

	o.mu.Lock()
	exec := o.executions[id]
	o.mu.Unlock()
	if exec != nil {
		exec.cancel()
	}

	telemetry.JobsCancelled.Inc()
	o.logger.Info("job.cancel_requested", "id", id)
	return nil
}

// ActiveCount reports how many executions are currently registered.
func (o *Orchestrator) ActiveCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.executions)
}

// Wait blocks until the job's execution goroutine exits, or returns false
// if no execution is registered. Intended for tests and shutdown paths.
func (o *Orchestrator) Wait(id string) bool {
	o.mu.Lock()
	exec := o.executions[id]
	o.mu.Unlock()
	if exec == nil {
		return false
	}
	<-exec.done
	return true
}

func (o *Orchestrator) removeExecution(id string) {
	o.mu.Lock()
	delete(o.executions, id)
	o.mu.Unlock()
}
