package pipeline

import (
	"lead-scraper/internal/models"
)

// Field weights for the data quality score. They sum to 100 so the score
// is already a percentage.
const (
	weightName       = 20
	weightPhone      = 25
	weightAddress    = 15
	weightOwner      = 20
	weightWebsite    = 10
	weightReviews    = 5
	weightAddContact = 5
)

// Score attaches a priority score and a data quality score to a cleaned
// listing. Deterministic: equal inputs always score equally.
func Score(b models.RawBusiness) models.Business {
	return models.Business{
		Name:              b.Name,
		Address:           b.Address,
		Phone:             b.Phone,
		Website:           b.Website,
		Rating:            b.Rating,
		ReviewCount:       b.ReviewCount,
		Hours:             b.Hours,
		Category:          b.Category,
		OwnerName:         b.OwnerName,
		AdditionalContact: b.AdditionalContact,
		Location:          b.Location,
		SourceURL:         b.SourceURL,
		ScrapedAt:         b.ScrapedAt,
		PriorityScore:     priorityScore(b),
		DataQualityScore:  qualityScore(b),
	}
}

// priorityScore favors businesses that are easy to contact but not yet
// established: few reviews, a phone number, a known owner. Lower is better.
func priorityScore(b models.RawBusiness) int {
	score := b.ReviewCount * 10
	if b.Phone != "" {
		score -= 50
	}
	if b.OwnerName != "" {
		score -= 30
	}
	if realWebsite(b.Website) {
		score -= 10
	}
	if b.Rating > 0 {
		score -= int(b.Rating * 2)
	}
	if score < 0 {
		score = 0
	}
	return score
}

// qualityScore is the weighted percentage of high-value fields present.
func qualityScore(b models.RawBusiness) float64 {
	score := 0
	if b.Name != "" {
		score += weightName
	}
	if b.Phone != "" {
		score += weightPhone
	}
	if b.Address != "" {
		score += weightAddress
	}
	if b.OwnerName != "" {
		score += weightOwner
	}
	if realWebsite(b.Website) {
		score += weightWebsite
	}
	if b.ReviewCount > 0 {
		score += weightReviews
	}
	if b.AdditionalContact != "" {
		score += weightAddContact
	}
	const maxScore = weightName + weightPhone + weightAddress + weightOwner + weightWebsite + weightReviews + weightAddContact
	return float64(score) / float64(maxScore) * 100
}

// realWebsite rejects the placeholders the scraper emits when no site was
// found.
func realWebsite(site string) bool {
	switch site {
	case "", "Not found", "N/A":
		return false
	}
	return true
}
