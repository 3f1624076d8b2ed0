// Package report renders filtered, ranked listings into downloadable
// XLSX, CSV, and JSON artifacts.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"lead-scraper/internal/config"
	"lead-scraper/internal/models"
)

// Metadata describes the run a report belongs to.
type Metadata struct {
	JobID       string    `json:"job_id,omitempty"`
	JobName     string    `json:"job_name"`
	GeneratedAt time.Time `json:"generated_at"`
	Locations   []string  `json:"locations"`
}

// Artifacts references the generated report files.
type Artifacts struct {
	ReportPath string `json:"report_path"`
	CSVPath    string `json:"csv_path"`
	JSONPath   string `json:"json_path"`
}

// Exporter renders an ordered result set into artifacts. An empty result
// set still produces artifacts (headers only).
type Exporter interface {
	Export(ctx context.Context, records []models.Business, meta Metadata) (Artifacts, error)
}

// FileExporter writes artifacts to the local report directory and, when a
// bucket is configured, mirrors them to S3. The recorded paths are always
// the local ones so the download endpoint can serve them.
type FileExporter struct {
	local  *localWriter
	s3     *s3Writer
	logger *slog.Logger
}

// NewFileExporter builds an exporter from config.
func NewFileExporter(ctx context.Context, cfg config.Config, logger *slog.Logger) (*FileExporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	baseDir := cfg.ReportDir
	if baseDir == "" {
		baseDir = "./reports"
	}

	var s3w *s3Writer
	if cfg.ReportS3Bucket != "" {
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s3w = &s3Writer{client: client, bucket: cfg.ReportS3Bucket}
	}

	return &FileExporter{
		local:  &localWriter{baseDir: baseDir},
		s3:     s3w,
		logger: logger,
	}, nil
}

// Export renders the workbook, CSV, and JSON files for one run.
func (e *FileExporter) Export(ctx context.Context, records []models.Business, meta Metadata) (Artifacts, error) {
	start := time.Now()
	prefix := artifactPrefix(meta)

	xlsxBytes, err := buildWorkbook(records, meta)
	if err != nil {
		return Artifacts{}, fmt.Errorf("build workbook: %w", err)
	}
	csvBytes, err := buildCSV(records)
	if err != nil {
		return Artifacts{}, fmt.Errorf("build csv: %w", err)
	}
	jsonBytes, err := buildJSON(records, meta)
	if err != nil {
		return Artifacts{}, fmt.Errorf("build json: %w", err)
	}

	files := []struct {
		key         string
		body        []byte
		contentType string
	}{
		{prefix + ".xlsx", xlsxBytes, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{prefix + ".csv", csvBytes, "text/csv"},
		{prefix + ".json", jsonBytes, "application/json"},
	}

	paths := make([]string, len(files))
	for i, f := range files {
		path, err := e.local.Write(ctx, f.key, f.body)
		if err != nil {
			return Artifacts{}, fmt.Errorf("write %s: %w", f.key, err)
		}
		paths[i] = path
		if e.s3 != nil {
			uri, err := e.s3.Write(ctx, f.key, f.body, f.contentType)
			if err != nil {
				return Artifacts{}, fmt.Errorf("upload %s: %w", f.key, err)
			}
			e.logger.Info("report.uploaded", "key", f.key, "uri", uri)
		}
	}

	e.logger.Info("report.export.ok",
		"job", meta.JobName,
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Artifacts{ReportPath: paths[0], CSVPath: paths[1], JSONPath: paths[2]}, nil
}

// artifactPrefix builds a filesystem-safe prefix like job_<id>_<name>.
func artifactPrefix(meta Metadata) string {
	name := strings.ReplaceAll(meta.JobName, " ", "_")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return -1
	}, name)
	if meta.JobID != "" {
		return "job_" + meta.JobID + "_" + name
	}
	return "job_" + meta.GeneratedAt.UTC().Format("20060102T150405") + "_" + name
}

// csvHeader fixes the CSV column order.
var csvHeader = []string{
	"name", "location", "phone", "owner_name", "address", "website",
	"review_count", "rating", "hours", "additional_contact",
	"data_quality_score", "priority_score",
}

func buildCSV(records []models.Business) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, b := range records {
		row := []string{
			b.Name, b.Location, b.Phone, b.OwnerName, b.Address, b.Website,
			strconv.Itoa(b.ReviewCount),
			strconv.FormatFloat(b.Rating, 'f', 1, 64),
			b.Hours, b.AdditionalContact,
			strconv.FormatFloat(b.DataQualityScore, 'f', 1, 64),
			strconv.Itoa(b.PriorityScore),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

type jsonReport struct {
	Metadata jsonMetadata      `json:"metadata"`
	Records  []models.Business `json:"businesses"`
}

type jsonMetadata struct {
	GeneratedAt     time.Time `json:"generated_at"`
	TotalBusinesses int       `json:"total_businesses"`
	Locations       []string  `json:"locations"`
}

func buildJSON(records []models.Business, meta Metadata) ([]byte, error) {
	out := jsonReport{
		Metadata: jsonMetadata{
			GeneratedAt:     meta.GeneratedAt,
			TotalBusinesses: len(records),
			Locations:       meta.Locations,
		},
		Records: records,
	}
	if out.Records == nil {
		out.Records = []models.Business{}
	}
	return json.MarshalIndent(out, "", "  ")
}
