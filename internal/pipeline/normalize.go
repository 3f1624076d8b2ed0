// Package pipeline cleans, de-duplicates, scores, and ranks scraped
// business listings. Every stage is a pure function over models values so
// each cleaning rule can be tested in isolation.
package pipeline

import (
	"regexp"
	"strings"

	"lead-scraper/internal/models"
)

var (
	quotedName   = regexp.MustCompile(`^".*"$`)
	numberedName = regexp.MustCompile(`^\d+\.\s*`)
	mapsArtifact = regexp.MustCompile(`(?i)^Google Maps`)

	suffixLLC  = regexp.MustCompile(`(?i)\bLLC\.?$`)
	suffixInc  = regexp.MustCompile(`(?i)\bInc\.?$`)
	suffixCorp = regexp.MustCompile(`(?i)\bCorp\.?$`)

	nonDigit    = regexp.MustCompile(`\D`)
	multiSpace  = regexp.MustCompile(`\s+`)
	doubleComma = regexp.MustCompile(`,\s*,`)

	parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)
	honorific     = regexp.MustCompile(`(?i)^(Mr\.?|Mrs\.?|Ms\.?|Dr\.?)\s+`)
	capitalWord   = regexp.MustCompile(`^[A-Z][a-z]+$`)
)

// sentinels are scraper placeholders that mean "no data".
var sentinels = map[string]bool{
	"Unknown":               true,
	"N/A":                   true,
	"Not found":             true,
	"No reviews":            true,
	"Not explicitly stated": true,
}

// Normalize returns a best-effort cleaned copy of the listing. It never
// fails: unparseable fields become the canonical empty value. Normalizing
// an already-normalized listing is a no-op.
func Normalize(raw models.RawBusiness) models.RawBusiness {
	out := raw
	out.Name = CleanName(raw.Name)
	out.Phone = CleanPhone(raw.Phone)
	out.Address = CleanAddress(raw.Address)
	out.OwnerName = CleanOwnerName(raw.OwnerName)
	if out.ReviewCount < 0 {
		out.ReviewCount = 0
	}
	if out.Rating < 0 {
		out.Rating = 0
	}
	return out
}

// CleanName drops scraping artifacts (quoted strings, numbered list
// prefixes, maps boilerplate) and canonicalizes LLC/Inc/Corp suffixes.
func CleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if quotedName.MatchString(name) || numberedName.MatchString(name) || mapsArtifact.MatchString(name) {
		return ""
	}
	name = suffixLLC.ReplaceAllString(name, "LLC")
	name = suffixInc.ReplaceAllString(name, "Inc")
	name = suffixCorp.ReplaceAllString(name, "Corp")
	return strings.TrimSpace(name)
}

// CleanPhone formats US numbers as "(AAA) BBB-CCCC". Ten digits are taken
// as-is; eleven digits with a leading 1 drop the country code. Anything
// else is invalid and maps to "".
func CleanPhone(phone string) string {
	digits := nonDigit.ReplaceAllString(strings.TrimSpace(phone), "")
	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "(" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}
	return ""
}

// CleanAddress collapses repeated whitespace and commas and maps sentinel
// placeholders to "".
func CleanAddress(address string) string {
	address = strings.TrimSpace(address)
	if address == "" || sentinels[address] {
		return ""
	}
	address = multiSpace.ReplaceAllString(address, " ")
	address = doubleComma.ReplaceAllString(address, ",")
	return strings.TrimSpace(address)
}

// CleanOwnerName strips parentheticals and honorifics, then requires the
// remainder to look like a person name: 2-4 capitalized words.
func CleanOwnerName(owner string) string {
	owner = strings.TrimSpace(owner)
	if owner == "" || sentinels[owner] {
		return ""
	}
	owner = parenthetical.ReplaceAllString(owner, "")
	owner = honorific.ReplaceAllString(owner, "")
	owner = strings.TrimSpace(owner)

	words := strings.Fields(owner)
	if len(words) < 2 || len(words) > 4 {
		return ""
	}
	for _, w := range words {
		if !capitalWord.MatchString(w) {
			return ""
		}
	}
	return owner
}
