package pipeline

import (
	"testing"

	"lead-scraper/internal/models"
)

func TestCleanPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"dashed ten digits", "208-555-1234", "(208) 555-1234"},
		{"eleven with country code", "1-208-555-1234", "(208) 555-1234"},
		{"already formatted", "(208) 555-1234", "(208) 555-1234"},
		{"dotted", "208.555.1234", "(208) 555-1234"},
		{"seven digits", "555-1234", ""},
		{"eleven without leading one", "2-208-555-1234", ""},
		{"letters only", "call us", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPhone(tt.phone); got != tt.want {
				t.Errorf("CleanPhone(%q) = %q, want %q", tt.phone, got, tt.want)
			}
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Acme Heating", "Acme Heating"},
		{"trims whitespace", "  Acme Heating  ", "Acme Heating"},
		{"quoted artifact", `"Acme Heating"`, ""},
		{"numbered list artifact", "1. Acme Heating", ""},
		{"maps artifact", "Google Maps Results", ""},
		{"llc with period", "Acme Heating LLC.", "Acme Heating LLC"},
		{"lowercase inc", "Acme Heating inc", "Acme Heating Inc"},
		{"corp with period", "Acme Corp.", "Acme Corp"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.in); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanOwnerName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"honorific and parenthetical", "Mr. John Smith (Owner)", "John Smith"},
		{"company name rejected", "ABC Heating Corp", ""},
		{"single word rejected", "John", ""},
		{"five words rejected", "John Jacob Jingleheimer Schmidt Jr", ""},
		{"sentinel unknown", "Unknown", ""},
		{"sentinel not stated", "Not explicitly stated", ""},
		{"three clean words", "Mary Anne Smith", "Mary Anne Smith"},
		{"lowercase word rejected", "john smith", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanOwnerName(tt.in); got != tt.want {
				t.Errorf("CleanOwnerName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses spaces", "123  Main   St", "123 Main St"},
		{"collapses commas", "123 Main St,, Boise", "123 Main St, Boise"},
		{"sentinel unknown", "Unknown", ""},
		{"sentinel na", "N/A", ""},
		{"sentinel no reviews", "No reviews", ""},
		{"plain", "123 Main St, Boise, ID", "123 Main St, Boise, ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanAddress(tt.in); got != tt.want {
				t.Errorf("CleanAddress(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := models.RawBusiness{
		Name:        "Acme Heating LLC.",
		Phone:       "1-208-555-1234",
		Address:     "123  Main St,, Boise",
		OwnerName:   "Mr. John Smith (Owner)",
		Rating:      4.5,
		ReviewCount: -3,
	}
	once := Normalize(raw)
	twice := Normalize(once)
	if once != twice {
		t.Errorf("Normalize not idempotent:\nonce  = %+v\ntwice = %+v", once, twice)
	}
	if once.Phone != "(208) 555-1234" {
		t.Errorf("Phone = %q, want (208) 555-1234", once.Phone)
	}
	if once.OwnerName != "John Smith" {
		t.Errorf("OwnerName = %q, want John Smith", once.OwnerName)
	}
	if once.ReviewCount != 0 {
		t.Errorf("ReviewCount = %d, want 0", once.ReviewCount)
	}
}
