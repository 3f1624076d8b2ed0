// Package api exposes the job workflow over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"lead-scraper/internal/config"
	"lead-scraper/internal/models"
	"lead-scraper/internal/orchestrator"
	"lead-scraper/internal/ratelimit"
	"lead-scraper/internal/store"
	"lead-scraper/internal/telemetry"
)

// Server wires HTTP handlers for the job API.
type Server struct {
	cfg     config.Config
	store   *store.Store
	orch    *orchestrator.Orchestrator
	limiter *ratelimit.TokenBucket
	logger  *slog.Logger
}

// New constructs the API server. The limiter may be nil, in which case job
// creation is not rate limited.
func New(cfg config.Config, st *store.Store, orch *orchestrator.Orchestrator, limiter *ratelimit.TokenBucket, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, store: st, orch: orch, limiter: limiter, logger: logger}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Mount("/metrics", telemetry.Handler())

	r.Post("/jobs", s.handleCreateJob)
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{id}", s.handleGetJob)
	r.Post("/jobs/{id}/start", s.handleStartJob)
	r.Post("/jobs/{id}/cancel", s.handleCancelJob)
	r.Get("/jobs/{id}/businesses", s.handleListBusinesses)
	r.Get("/jobs/{id}/reports/{kind}", s.handleDownloadReport)
	r.Get("/stats", s.handleStats)
	return r
}

type createJobRequest struct {
	Name            string   `json:"name"`
	Locations       []string `json:"locations"`
	BusinessType    string   `json:"business_type"`
	MaxReviews      int      `json:"max_reviews"`
	MinQualityScore float64  `json:"min_quality_score"`
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil {
		allowed, _, err := s.limiter.Allow(r.Context(), "jobs:"+clientKey(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "rate limit check failed")
			return
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			writeError(w, http.StatusTooManyRequests, "rate limited")
			return
		}
	}

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	job, err := s.orch.Create(r.Context(), orchestrator.CreateRequest{
		Name:            req.Name,
		Locations:       req.Locations,
		BusinessType:    req.BusinessType,
		MaxReviews:      req.MaxReviews,
		MinQualityScore: req.MinQualityScore,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"job": job})
}

func (s *Server) handleStartJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orch.Start(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.orch.Cancel(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": job})
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 10)

	var status models.JobStatus
	if v := r.URL.Query().Get("status"); v != "" {
		status = models.JobStatus(v)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}

	jobs, total, err := s.store.ListJobs(r.Context(), store.ListJobsParams{
		Page:    page,
		PerPage: perPage,
		Status:  status,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"jobs":       jobs,
		"pagination": pagination(page, perPage, total),
	})
}

func (s *Server) handleListBusinesses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.GetJob(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 50)
	params := store.ListBusinessesParams{
		JobID:    id,
		Page:     page,
		PerPage:  perPage,
		Location: r.URL.Query().Get("location"),
	}
	if v := r.URL.Query().Get("max_reviews"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid max_reviews")
			return
		}
		params.MaxReviews = &n
	}

	businesses, total, err := s.store.ListBusinesses(r.Context(), params)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"businesses": businesses,
		"pagination": pagination(page, perPage, total),
	})
}

// reportContentTypes maps the report kind in the URL to a content type.
var reportContentTypes = map[string]string{
	"report": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"csv":    "text/csv",
	"json":   "application/json",
}

func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	kind := chi.URLParam(r, "kind")

	contentType, ok := reportContentTypes[kind]
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid report kind; use report, csv, or json")
		return
	}

	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if job.Status != models.StatusCompleted {
		writeError(w, http.StatusConflict, fmt.Sprintf("job has not completed (status %s)", job.Status))
		return
	}

	var path *string
	switch kind {
	case "report":
		path = job.ReportPath
	case "csv":
		path = job.CSVPath
	case "json":
		path = job.JSONPath
	}
	if path == nil || *path == "" {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}

	body, err := os.ReadFile(*path)
	if err != nil {
		writeError(w, http.StatusNotFound, "report file missing")
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", downloadName(job.Name, *path)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountJobsByStatus(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": map[string]any{
			"total_jobs":     total,
			"completed_jobs": counts[models.StatusCompleted],
			"running_jobs":   counts[models.StatusRunning],
			"failed_jobs":    counts[models.StatusFailed],
			"active_jobs":    s.orch.ActiveCount(),
		},
	})
}

// writeDomainError maps domain errors onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var verr *orchestrator.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, orchestrator.ErrAlreadyRunning), errors.Is(err, orchestrator.ErrInvalidState):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error("api.internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func clientKey(r *http.Request) string {
	if v := r.Header.Get("X-Forwarded-For"); v != "" {
		if i := strings.IndexByte(v, ','); i > 0 {
			return strings.TrimSpace(v[:i])
		}
		return strings.TrimSpace(v)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func downloadName(jobName, path string) string {
	name := strings.ReplaceAll(jobName, " ", "_")
	return name + filepath.Ext(path)
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func pagination(page, perPage, total int) map[string]any {
	pages := (total + perPage - 1) / perPage
	return map[string]any{
		"page":     page,
		"per_page": perPage,
		"total":    total,
		"pages":    pages,
		"has_next": page < pages,
		"has_prev": page > 1,
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}
