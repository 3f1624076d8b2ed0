package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"lead-scraper/internal/models"
)

// ErrNotFound is returned when a job or business row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps pgxpool for Postgres persistence.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a pooled connection to Postgres.
func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateJobParams collects inputs required to insert a job.
type CreateJobParams struct {
	Name            string
	Locations       []string
	BusinessType    string
	MaxReviews      int
	MinQualityScore float64
}

// CreateJob inserts a pending job row and returns it.
func (s *Store) CreateJob(ctx context.Context, p CreateJobParams) (models.Job, error) {
	locationsJSON, err := json.Marshal(p.Locations)
	if err != nil {
		return models.Job{}, fmt.Errorf("marshal locations: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC()

	_, err = s.pool.Exec(ctx, `
		INSERT INTO jobs (id, name, locations, business_type, max_reviews, min_quality_score, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, id, p.Name, locationsJSON, p.BusinessType, p.MaxReviews, p.MinQualityScore, models.StatusPending, now)
	if err != nil {
		return models.Job{}, fmt.Errorf("insert job: %w", err)
	}

	return models.Job{
		ID:              id,
		Name:            p.Name,
		Locations:       p.Locations,
		BusinessType:    p.BusinessType,
		MaxReviews:      p.MaxReviews,
		MinQualityScore: p.MinQualityScore,
		Status:          models.StatusPending,
		CreatedAt:       now,
	}, nil
}

const jobColumns = `id, name, locations, business_type, max_reviews, min_quality_score, status,
	created_at, started_at, completed_at, total_found, total_matching, error_message,
	report_path, csv_path, json_path`

// GetJob fetches a job by id.
func (s *Store) GetJob(ctx context.Context, id string) (models.Job, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Job{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Job{}, fmt.Errorf("scan job: %w", err)
	}
	return job, nil
}

// ListJobsParams controls pagination and filtering of the job listing.
type ListJobsParams struct {
	Page    int
	PerPage int
	Status  models.JobStatus // zero value lists all statuses
}

// ListJobs returns one page of jobs, newest first, plus the unpaginated
// total for the same filter.
func (s *Store) ListJobs(ctx context.Context, p ListJobsParams) ([]models.Job, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 10
	}
	offset := (p.Page - 1) * p.PerPage

	var (
		rows pgx.Rows
		err  error
	)
	if p.Status != "" {
		rows, err = s.pool.Query(ctx, `
			SELECT `+jobColumns+` FROM jobs WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, p.Status, p.PerPage, offset)
	} else {
		rows, err = s.pool.Query(ctx, `
			SELECT `+jobColumns+` FROM jobs
			ORDER BY created_at DESC LIMIT $1 OFFSET $2
		`, p.PerPage, offset)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]models.Job, 0, p.PerPage)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate jobs: %w", err)
	}

	var total int
	if p.Status != "" {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE status = $1`, p.Status).Scan(&total)
	} else {
		err = s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return jobs, total, nil
}

// MarkRunning transitions pending -> running with a started timestamp.
// Returns false when the job was not pending, so the caller can surface an
// invalid-state conflict without a read-then-write race.
func (s *Store) MarkRunning(ctx context.Context, id string, startedAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4
	`, id, models.StatusRunning, startedAt, models.StatusPending)
	if err != nil {
		return false, fmt.Errorf("mark running: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// CompleteJobParams carries the outcome of a successful run.
type CompleteJobParams struct {
	TotalFound    int
	TotalMatching int
	ReportPath    string
	CSVPath       string
	JSONPath      string
	CompletedAt   time.Time
}

// MarkCompleted transitions running -> completed with counts and artifact
// paths in one atomic update.
func (s *Store) MarkCompleted(ctx context.Context, id string, p CompleteJobParams) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs
		SET status = $2, completed_at = $3, total_found = $4, total_matching = $5,
		    report_path = $6, csv_path = $7, json_path = $8, error_message = NULL
		WHERE id = $1 AND status = $9
	`, id, models.StatusCompleted, p.CompletedAt, p.TotalFound, p.TotalMatching,
		emptyToNil(p.ReportPath), emptyToNil(p.CSVPath), emptyToNil(p.JSONPath), models.StatusRunning)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s not running", id)
	}
	return nil
}

// MarkFailed transitions running -> failed with the captured error.
func (s *Store) MarkFailed(ctx context.Context, id string, errMsg string, completedAt time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, completed_at = $3, error_message = $4
		WHERE id = $1 AND status = $5
	`, id, models.StatusFailed, completedAt, errMsg, models.StatusRunning)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}

// MarkCancelled transitions pending or running -> cancelled. Returns false
// when the job was already terminal.
func (s *Store) MarkCancelled(ctx context.Context, id string, completedAt time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, completed_at = $3
		WHERE id = $1 AND status IN ($4, $5)
	`, id, models.StatusCancelled, completedAt, models.StatusPending, models.StatusRunning)
	if err != nil {
		return false, fmt.Errorf("mark cancelled: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// InsertBusinesses bulk-inserts scored listings for a job.
func (s *Store) InsertBusinesses(ctx context.Context, jobID string, businesses []models.Business) error {
	if len(businesses) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, b := range businesses {
		batch.Queue(`
			INSERT INTO businesses (id, job_id, name, address, phone, website, rating, review_count,
				hours, category, owner_name, additional_contact, location, source_url, scraped_at,
				priority_score, data_quality_score)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		`, uuid.New().String(), jobID, b.Name, b.Address, b.Phone, b.Website, b.Rating, b.ReviewCount,
			b.Hours, b.Category, b.OwnerName, b.AdditionalContact, b.Location, b.SourceURL, b.ScrapedAt,
			b.PriorityScore, b.DataQualityScore)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range businesses {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("insert business: %w", err)
		}
	}
	return nil
}

// ListBusinessesParams controls pagination and filtering of a job's listings.
type ListBusinessesParams struct {
	JobID      string
	Page       int
	PerPage    int
	Location   string // substring match, case-insensitive
	MaxReviews *int
}

// ListBusinesses returns one page of a job's listings ordered by priority
// score, plus the unpaginated total for the same filter.
func (s *Store) ListBusinesses(ctx context.Context, p ListBusinessesParams) ([]models.Business, int, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = 50
	}
	offset := (p.Page - 1) * p.PerPage

	where := `WHERE job_id = $1`
	args := []any{p.JobID}
	if p.Location != "" {
		args = append(args, "%"+p.Location+"%")
		where += fmt.Sprintf(` AND location ILIKE $%d`, len(args))
	}
	if p.MaxReviews != nil {
		args = append(args, *p.MaxReviews)
		where += fmt.Sprintf(` AND review_count <= $%d`, len(args))
	}

	countArgs := make([]any, len(args))
	copy(countArgs, args)

	args = append(args, p.PerPage, offset)
	query := fmt.Sprintf(`
		SELECT id, job_id, name, address, phone, website, rating, review_count, hours, category,
			owner_name, additional_contact, location, source_url, scraped_at, priority_score, data_quality_score
		FROM businesses %s
		ORDER BY priority_score ASC, review_count ASC, name ASC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query businesses: %w", err)
	}
	defer rows.Close()

	businesses := make([]models.Business, 0, p.PerPage)
	for rows.Next() {
		var b models.Business
		if err := rows.Scan(&b.ID, &b.JobID, &b.Name, &b.Address, &b.Phone, &b.Website, &b.Rating,
			&b.ReviewCount, &b.Hours, &b.Category, &b.OwnerName, &b.AdditionalContact, &b.Location,
			&b.SourceURL, &b.ScrapedAt, &b.PriorityScore, &b.DataQualityScore); err != nil {
			return nil, 0, fmt.Errorf("scan business: %w", err)
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate businesses: %w", err)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM businesses `+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count businesses: %w", err)
	}
	return businesses, total, nil
}

// CountJobsByStatus returns the number of jobs per status.
func (s *Store) CountJobsByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.JobStatus]int)
	for rows.Next() {
		var status models.JobStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanJob(row pgx.Row) (models.Job, error) {
	var job models.Job
	var locationsJSON []byte
	var startedAt, completedAt pgtype.Timestamptz
	var errMsg, reportPath, csvPath, jsonPath pgtype.Text

	if err := row.Scan(&job.ID, &job.Name, &locationsJSON, &job.BusinessType, &job.MaxReviews,
		&job.MinQualityScore, &job.Status, &job.CreatedAt, &startedAt, &completedAt,
		&job.TotalFound, &job.TotalMatching, &errMsg, &reportPath, &csvPath, &jsonPath); err != nil {
		return models.Job{}, err
	}
	if err := json.Unmarshal(locationsJSON, &job.Locations); err != nil {
		return models.Job{}, fmt.Errorf("unmarshal locations: %w", err)
	}
	job.StartedAt = timePtr(startedAt)
	job.CompletedAt = timePtr(completedAt)
	job.ErrorMessage = textPtr(errMsg)
	job.ReportPath = textPtr(reportPath)
	job.CSVPath = textPtr(csvPath)
	job.JSONPath = textPtr(jsonPath)
	return job, nil
}

func textPtr(t pgtype.Text) *string {
	if t.Valid {
		return &t.String
	}
	return nil
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if t.Valid {
		return &t.Time
	}
	return nil
}

func emptyToNil(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
