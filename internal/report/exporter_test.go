package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"lead-scraper/internal/config"
	"lead-scraper/internal/models"
)

func testExporter(t *testing.T) *FileExporter {
	t.Helper()
	e, err := NewFileExporter(context.Background(), config.Config{ReportDir: t.TempDir()},
		slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	return e
}

func TestExportWritesAllArtifacts(t *testing.T) {
	e := testExporter(t)
	meta := Metadata{
		JobID:       "3f2c8c1e-0000-0000-0000-000000000001",
		JobName:     "Idaho HVAC sweep",
		GeneratedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Locations:   []string{"Kuna, Idaho", "Star, Idaho"},
	}
	records := []models.Business{
		{Name: "Acme Heating", Phone: "(208) 555-1234", Location: "Kuna, Idaho", OwnerName: "John Smith", DataQualityScore: 65},
		{Name: "Star Cooling", Phone: "(208) 555-9999", Location: "Star, Idaho", ReviewCount: 2, DataQualityScore: 50},
	}

	artifacts, err := e.Export(context.Background(), records, meta)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, path := range []string{artifacts.ReportPath, artifacts.CSVPath, artifacts.JSONPath} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("artifact missing: %v", err)
		}
		if info.Size() == 0 {
			t.Errorf("artifact %s is empty", path)
		}
	}
	if !strings.HasSuffix(artifacts.ReportPath, ".xlsx") {
		t.Errorf("report path = %q", artifacts.ReportPath)
	}

	// CSV: header plus one row per record, fixed column order.
	f, err := os.Open(artifacts.CSVPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("csv rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "name" || rows[0][11] != "priority_score" {
		t.Errorf("csv header = %v", rows[0])
	}
	if rows[1][0] != "Acme Heating" || rows[1][2] != "(208) 555-1234" {
		t.Errorf("csv row = %v", rows[1])
	}

	// JSON: metadata block plus records.
	raw, err := os.ReadFile(artifacts.JSONPath)
	if err != nil {
		t.Fatal(err)
	}
	var parsed jsonReport
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatalf("parse json: %v", err)
	}
	if parsed.Metadata.TotalBusinesses != 2 {
		t.Errorf("total_businesses = %d", parsed.Metadata.TotalBusinesses)
	}
	if len(parsed.Metadata.Locations) != 2 {
		t.Errorf("locations = %v", parsed.Metadata.Locations)
	}
}

func TestExportEmptyResultSet(t *testing.T) {
	e := testExporter(t)
	artifacts, err := e.Export(context.Background(), nil, Metadata{
		JobName:     "empty run",
		GeneratedAt: time.Now(),
		Locations:   []string{"Nowhere"},
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	raw, err := os.ReadFile(artifacts.JSONPath)
	if err != nil {
		t.Fatal(err)
	}
	var parsed jsonReport
	if err := json.Unmarshal(raw, &parsed); err != nil {
		t.Fatal(err)
	}
	if parsed.Metadata.TotalBusinesses != 0 || parsed.Records == nil {
		t.Errorf("empty export = %+v", parsed)
	}
}

func TestArtifactPrefixSanitizes(t *testing.T) {
	got := artifactPrefix(Metadata{JobID: "abc", JobName: "Sweep #1 / Q2"})
	if strings.ContainsAny(got, "#/ ") {
		t.Errorf("prefix not sanitized: %q", got)
	}
	if !strings.HasPrefix(got, "job_abc_") {
		t.Errorf("prefix = %q", got)
	}
}
