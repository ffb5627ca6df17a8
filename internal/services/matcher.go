package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"gorm.io/gorm"
)

// ItemMatcher links a new found report to the oldest open lost report with
// the same name, category and location. Comparison is exact.
type ItemMatcher struct{}

// Match runs inside the found report's creation transaction, before the
// found report is inserted. On a match the lost report flips to FOUND, both
// sides reference each other and the lost report is returned. No match
// returns nil.
func (ItemMatcher) Match(tx *gorm.DB, found *models.FoundReport) (*models.LostReport, error) {
	var lost models.LostReport
	err := lockForUpdate(tx).
		Where("name = ? AND category = ? AND location = ? AND status = ?",
			found.Name, found.Category, found.Location, models.LostStatusLost).
		Order("created_at ASC").
		First(&lost).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up lost items: %w", err)
	}

	res := tx.Model(&models.LostReport{}).
		Where("id = ? AND status = ?", lost.ID, models.LostStatusLost).
		Updates(map[string]interface{}{
			"status":                  models.LostStatusFound,
			"matched_found_report_id": found.ID,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to mark lost item found: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	lost.Status = models.LostStatusFound
	lost.MatchedFoundReportID = &found.ID
	found.MatchedLostReportID = &lost.ID
	return &lost, nil
}
