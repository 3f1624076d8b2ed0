package pipeline

import (
	"sort"

	"lead-scraper/internal/models"
)

// SelectAndRank keeps listings that meet the calling-list criteria and
// sorts them best-first: ascending by priority score, then review count,
// then name. The sort is stable so equal listings keep input order.
func SelectAndRank(in []models.Business, maxReviews int, minQuality float64) []models.Business {
	out := make([]models.Business, 0, len(in))
	for _, b := range in {
		if b.ReviewCount > maxReviews {
			continue
		}
		if b.DataQualityScore < minQuality {
			continue
		}
		if b.Phone == "" {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PriorityScore != out[j].PriorityScore {
			return out[i].PriorityScore < out[j].PriorityScore
		}
		if out[i].ReviewCount != out[j].ReviewCount {
			return out[i].ReviewCount < out[j].ReviewCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Process runs the full cleaning pipeline over a raw batch: normalize each
// listing, drop duplicates and unnamed entries, then score the survivors.
func Process(raw []models.RawBusiness) []models.Business {
	cleaned := make([]models.RawBusiness, 0, len(raw))
	for _, b := range raw {
		cleaned = append(cleaned, Normalize(b))
	}
	cleaned = Dedupe(cleaned)

	scored := make([]models.Business, 0, len(cleaned))
	for _, b := range cleaned {
		scored = append(scored, Score(b))
	}
	return scored
}
