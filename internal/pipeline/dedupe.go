package pipeline

import (
	"lead-scraper/internal/models"
)

type dedupKey struct {
	name  string
	phone string
}

// Dedupe drops listings with an empty name and keeps the first occurrence
// per (name, phone) pair. Surviving listings keep their input order.
func Dedupe(in []models.RawBusiness) []models.RawBusiness {
	seen := make(map[dedupKey]bool, len(in))
	out := make([]models.RawBusiness, 0, len(in))
	for _, b := range in {
		if b.Name == "" {
			continue
		}
		key := dedupKey{name: b.Name, phone: b.Phone}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, b)
	}
	return out
}
