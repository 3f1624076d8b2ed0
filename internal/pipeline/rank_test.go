package pipeline

import (
	"testing"

	"lead-scraper/internal/models"
)

func TestSelectAndRank(t *testing.T) {
	in := []models.Business{
		{Name: "Charlie", Phone: "(208) 555-0001", ReviewCount: 5, PriorityScore: 10, DataQualityScore: 80},
		{Name: "Alpha", Phone: "(208) 555-0002", ReviewCount: 5, PriorityScore: 10, DataQualityScore: 80},
		{Name: "Bravo", Phone: "(208) 555-0003", ReviewCount: 2, PriorityScore: 10, DataQualityScore: 80},
		{Name: "NoPhone", Phone: "", ReviewCount: 0, PriorityScore: 0, DataQualityScore: 90},
		{Name: "TooManyReviews", Phone: "(208) 555-0004", ReviewCount: 50, PriorityScore: 0, DataQualityScore: 90},
		{Name: "LowQuality", Phone: "(208) 555-0005", ReviewCount: 1, PriorityScore: 0, DataQualityScore: 20},
		{Name: "Best", Phone: "(208) 555-0006", ReviewCount: 0, PriorityScore: 0, DataQualityScore: 70},
	}

	out := SelectAndRank(in, 20, 40.0)

	wantOrder := []string{"Best", "Bravo", "Alpha", "Charlie"}
	if len(out) != len(wantOrder) {
		t.Fatalf("len = %d, want %d: %+v", len(out), len(wantOrder), out)
	}
	for i, name := range wantOrder {
		if out[i].Name != name {
			t.Errorf("out[%d].Name = %q, want %q", i, out[i].Name, name)
		}
	}
	for _, b := range out {
		if b.Phone == "" || b.ReviewCount > 20 || b.DataQualityScore < 40.0 {
			t.Errorf("listing violates criteria: %+v", b)
		}
	}
}

func TestSelectAndRankEmpty(t *testing.T) {
	out := SelectAndRank(nil, 20, 40.0)
	if len(out) != 0 {
		t.Errorf("want empty, got %+v", out)
	}
}

func TestProcessEndToEnd(t *testing.T) {
	raw := []models.RawBusiness{
		{Name: "Acme Heating LLC.", Phone: "208-555-1234", OwnerName: "Mr. John Smith (Owner)", Location: "Kuna, Idaho"},
		{Name: "Acme Heating LLC", Phone: "(208) 555-1234"}, // duplicate after normalization
		{Name: "Google Maps Results", Phone: "208-555-9999"},
		{Name: "Star Cooling", Phone: "555-1234", ReviewCount: 2}, // phone too short
	}

	scored := Process(raw)
	if len(scored) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(scored), scored)
	}
	if scored[0].Name != "Acme Heating LLC" || scored[0].Phone != "(208) 555-1234" {
		t.Errorf("scored[0] = %+v", scored[0])
	}
	if scored[0].OwnerName != "John Smith" {
		t.Errorf("OwnerName = %q, want John Smith", scored[0].OwnerName)
	}
	if scored[1].Phone != "" {
		t.Errorf("invalid phone should normalize to empty, got %q", scored[1].Phone)
	}
	for _, b := range scored {
		if b.PriorityScore < 0 {
			t.Errorf("negative priority score: %+v", b)
		}
		if b.DataQualityScore < 0 || b.DataQualityScore > 100 {
			t.Errorf("quality score out of range: %+v", b)
		}
	}
}
