package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportService struct {
	db      *gorm.DB
	matcher ItemMatcher
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) CreateLost(ownerID uuid.UUID, req *dto.ReportRequest) (*models.LostReport, error) {
	lost := models.LostReport{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date,
		Location:    strings.TrimSpace(req.Location),
		PhotoURL:    req.PhotoURL,
		Status:      models.LostStatusLost,
	}
	if err := s.db.Create(&lost).Error; err != nil {
		return nil, fmt.Errorf("failed to create lost item: %w", err)
	}
	return &lost, nil
}

func (s *ReportService) ListLost() ([]models.LostReport, error) {
	var items []models.LostReport
	if err := s.db.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list lost items: %w", err)
	}
	return items, nil
}

func (s *ReportService) GetLost(id uuid.UUID) (*models.LostReport, error) {
	return findLost(s.db, id)
}

// DeleteLost removes the report with its claims and clears the link held by
// a matched found report.
func (s *ReportService) DeleteLost(id uuid.UUID, actor Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		lost, err := findLost(lockForUpdate(tx), id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(lost.OwnerID) {
			return ErrForbidden
		}
		return purgeLost(tx, []uuid.UUID{id})
	})
}

// CreateFound stores the report as AVAILABLE and runs the matcher in the
// same transaction.
func (s *ReportService) CreateFound(reporterID uuid.UUID, req *dto.ReportRequest) (*models.FoundReport, error) {
	found := models.FoundReport{
		ID:          uuid.New(),
		ReporterID:  reporterID,
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date,
		Location:    strings.TrimSpace(req.Location),
		PhotoURL:    req.PhotoURL,
		Status:      models.FoundStatusAvailable,
	}

	var matched *models.LostReport
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if matched, err = s.matcher.Match(tx, &found); err != nil {
			return err
		}
		if err := tx.Create(&found).Error; err != nil {
			return fmt.Errorf("failed to create found item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if matched != nil {
		slog.Info("found item matched", "action", "match", "found_id", found.ID.String(), "lost_id", matched.ID.String())
	}
	return &found, nil
}

func (s *ReportService) ListFound() ([]models.FoundReport, error) {
	var items []models.FoundReport
	if err := s.db.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list found items: %w", err)
	}
	return items, nil
}

func (s *ReportService) GetFound(id uuid.UUID) (*models.FoundReport, error) {
	return findFound(s.db, id)
}

// UpdateFound edits the descriptive fields. Status is owned by the claim
// workflow and the match link is not recomputed.
func (s *ReportService) UpdateFound(id uuid.UUID, actor Actor, req *dto.ReportRequest) (*models.FoundReport, error) {
	var found *models.FoundReport
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if found, err = findFound(lockForUpdate(tx), id); err != nil {
			return err
		}
		if found.ReporterID != actor.ID {
			return ErrForbidden
		}
		if req.Status != "" && !strings.EqualFold(req.Status, string(found.Status)) {
			return ErrStatusImmutable
		}

		found.Name = strings.TrimSpace(req.Name)
		found.Category = strings.TrimSpace(req.Category)
		found.Description = strings.TrimSpace(req.Description)
		found.Date = req.Date
		found.Location = strings.TrimSpace(req.Location)
		found.PhotoURL = req.PhotoURL
		if err := tx.Save(found).Error; err != nil {
			return fmt.Errorf("failed to update found item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// DeleteFound removes the report with its claims. A matched lost report is
// unlinked but stays FOUND.
func (s *ReportService) DeleteFound(id uuid.UUID, actor Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		found, err := findFound(lockForUpdate(tx), id)
		if err != nil {
			return err
		}
		if !actor.CanAccess(found.ReporterID) {
			return ErrForbidden
		}
		return purgeFound(tx, []uuid.UUID{id})
	})
}

func findLost(db *gorm.DB, id uuid.UUID) (*models.LostReport, error) {
	var lost models.LostReport
	if err := db.First(&lost, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLostReportNotFound
		}
		return nil, fmt.Errorf("failed to load lost item: %w", err)
	}
	return &lost, nil
}

func findFound(db *gorm.DB, id uuid.UUID) (*models.FoundReport, error) {
	var found models.FoundReport
	if err := db.First(&found, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoundReportNotFound
		}
		return nil, fmt.Errorf("failed to load found item: %w", err)
	}
	return &found, nil
}

func purgeLost(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("lost_report_id IN ?", ids).Delete(&models.ClaimRequest{}).Error; err != nil {
		return fmt.Errorf("failed to delete claims: %w", err)
	}
	if err := tx.Model(&models.FoundReport{}).Where("matched_lost_report_id IN ?", ids).
		Update("matched_lost_report_id", nil).Error; err != nil {
		return fmt.Errorf("failed to unlink found items: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.LostReport{}).Error; err != nil {
		return fmt.Errorf("failed to delete lost items: %w", err)
	}
	return nil
}

func purgeFound(tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("found_report_id IN ?", ids).Delete(&models.ClaimRequest{}).Error; err != nil {
		return fmt.Errorf("failed to delete claims: %w", err)
	}
	if err := tx.Model(&models.LostReport{}).Where("matched_found_report_id IN ?", ids).
		Update("matched_found_report_id", nil).Error; err != nil {
		return fmt.Errorf("failed to unlink lost items: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&models.FoundReport{}).Error; err != nil {
		return fmt.Errorf("failed to delete found items: %w", err)
	}
	return nil
}
