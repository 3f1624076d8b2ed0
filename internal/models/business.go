package models

import (
	"time"
)

// RawBusiness is a listing exactly as the scraper produced it. Fields may
// hold sentinel strings ("N/A", "Unknown") or malformed values.
type RawBusiness struct {
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	Phone             string    `json:"phone"`
	Website           string    `json:"website"`
	Rating            float64   `json:"rating"`
	ReviewCount       int       `json:"review_count"`
	Hours             string    `json:"hours"`
	Category          string    `json:"category"`
	OwnerName         string    `json:"owner_name"`
	AdditionalContact string    `json:"additional_contact"`
	Location          string    `json:"location"`
	SourceURL         string    `json:"source_url"`
	ScrapedAt         time.Time `json:"scraped_at"`
}

// Business is a cleaned and scored listing. Every field is either
// semantically valid or the canonical empty value; phone is "" or
// "(AAA) BBB-CCCC", owner name is "" or 2-4 capitalized words.
type Business struct {
	ID                string    `json:"id,omitempty"`
	JobID             string    `json:"job_id,omitempty"`
	Name              string    `json:"name"`
	Address           string    `json:"address"`
	Phone             string    `json:"phone"`
	Website           string    `json:"website"`
	Rating            float64   `json:"rating"`
	ReviewCount       int       `json:"review_count"`
	Hours             string    `json:"hours"`
	Category          string    `json:"category"`
	OwnerName         string    `json:"owner_name"`
	AdditionalContact string    `json:"additional_contact"`
	Location          string    `json:"location"`
	SourceURL         string    `json:"source_url"`
	ScrapedAt         time.Time `json:"scraped_at"`
	PriorityScore     int       `json:"priority_score"`
	DataQualityScore  float64   `json:"data_quality_score"`
}
