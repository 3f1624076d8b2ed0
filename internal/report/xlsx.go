package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"lead-scraper/internal/models"
)

// buildWorkbook renders the three-sheet workbook: Summary, Calling List,
// and Zero Reviews.
func buildWorkbook(records []models.Business, meta Metadata) ([]byte, error) {
	f := excelize.NewFile()

	if err := writeSummarySheet(f, records, meta); err != nil {
		return nil, err
	}
	if err := writeCallingListSheet(f, records); err != nil {
		return nil, err
	}
	if err := writeZeroReviewsSheet(f, records); err != nil {
		return nil, err
	}

	// Drop the default sheet and activate Summary.
	_ = f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex("Summary"); err == nil {
		f.SetActiveSheet(idx)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummarySheet(f *excelize.File, records []models.Business, meta Metadata) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	withPhone, withOwner, zeroReviews := 0, 0, 0
	var qualitySum float64
	perLocation := map[string]int{}
	for _, b := range records {
		if b.Phone != "" {
			withPhone++
		}
		if b.OwnerName != "" {
			withOwner++
		}
		if b.ReviewCount == 0 {
			zeroReviews++
		}
		qualitySum += b.DataQualityScore
		perLocation[b.Location]++
	}
	avgQuality := 0.0
	if len(records) > 0 {
		avgQuality = qualitySum / float64(len(records))
	}

	_ = f.SetCellValue(sheet, "A1", "Business Lead Report")
	_ = f.SetCellValue(sheet, "A3", "Generated: "+meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	_ = f.SetCellValue(sheet, "A4", fmt.Sprintf("Total Businesses: %d", len(records)))

	rows := [][2]any{
		{"Businesses with phone numbers:", withPhone},
		{"Businesses with owner names:", withOwner},
		{"Businesses with 0 reviews:", zeroReviews},
		{"Average data quality score:", fmt.Sprintf("%.1f%%", avgQuality)},
	}
	for i, row := range rows {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", 6+i), row[0])
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", 6+i), row[1])
	}

	_ = f.SetCellValue(sheet, "A11", "LOCATION BREAKDOWN")
	line := 12
	for _, loc := range meta.Locations {
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", line), loc)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", line), perLocation[loc])
		line++
	}

	_ = f.SetColWidth(sheet, "A", "A", 34)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	return nil
}

var callingListHeader = []string{
	"Priority Rank", "Business Name", "Location", "Phone Number", "Owner Name",
	"Address", "Website", "Review Count", "Rating", "Hours",
	"Additional Contact", "Quality Score",
}

func writeCallingListSheet(f *excelize.File, records []models.Business) error {
	const sheet = "Calling List"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	for i, h := range callingListHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for row, b := range records {
		values := []any{
			row + 1, b.Name, b.Location, b.Phone, ownerOrUnknown(b.OwnerName),
			b.Address, b.Website, b.ReviewCount, b.Rating, b.Hours,
			b.AdditionalContact, fmt.Sprintf("%.1f%%", b.DataQualityScore),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "B", "B", 32)
	_ = f.SetColWidth(sheet, "C", "F", 24)
	return nil
}

var zeroReviewsHeader = []string{
	"Business Name", "Location", "Phone Number", "Owner Name", "Address",
	"Website", "Hours", "Additional Contact", "Quality Score",
}

func writeZeroReviewsSheet(f *excelize.File, records []models.Business) error {
	const sheet = "Zero Reviews"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	var zero []models.Business
	for _, b := range records {
		if b.ReviewCount == 0 {
			zero = append(zero, b)
		}
	}
	if len(zero) == 0 {
		_ = f.SetCellValue(sheet, "A1", "No businesses found with zero reviews")
		return nil
	}

	for i, h := range zeroReviewsHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for row, b := range zero {
		values := []any{
			b.Name, b.Location, b.Phone, ownerOrUnknown(b.OwnerName), b.Address,
			b.Website, b.Hours, b.AdditionalContact, fmt.Sprintf("%.1f%%", b.DataQualityScore),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32)
	_ = f.SetColWidth(sheet, "B", "E", 24)
	return nil
}

func ownerOrUnknown(owner string) string {
	if owner == "" {
		return "Unknown"
	}
	return owner
}
