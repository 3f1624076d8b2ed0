package models

import (
	"time"
)

// JobStatus enumerates the lifecycle states persisted in Postgres.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// transitions is the full set of legal status moves. Terminal states
// (completed, failed, cancelled) have no outgoing edges.
var transitions = map[JobStatus][]JobStatus{
	StatusPending: {StatusRunning, StatusCancelled},
	StatusRunning: {StatusCompleted, StatusFailed, StatusCancelled},
}

// CanTransition reports whether moving from to next is a legal lifecycle step.
func CanTransition(from, next JobStatus) bool {
	for _, s := range transitions[from] {
		if s == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing transitions.
func (s JobStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

// Valid reports whether s is a known status value.
func (s JobStatus) Valid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Job represents one scraping request persisted in Postgres.
type Job struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Locations       []string   `json:"locations"`
	BusinessType    string     `json:"business_type"`
	MaxReviews      int        `json:"max_reviews"`
	MinQualityScore float64    `json:"min_quality_score"`
	Status          JobStatus  `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	StartedAt       *time.Time `json:"started_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	TotalFound      int        `json:"total_found"`
	TotalMatching   int        `json:"total_matching"`
	ErrorMessage    *string    `json:"error_message,omitempty"`
	ReportPath      *string    `json:"report_path,omitempty"`
	CSVPath         *string    `json:"csv_path,omitempty"`
	JSONPath        *string    `json:"json_path,omitempty"`
}
