package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrUnknownClaimStatus = newError(KindValidation, "status must be PENDING, APPROVED or REJECTED")

// Notifier queues an email without waiting for delivery.
type Notifier interface {
	Enqueue(msg mailer.Message) bool
}

// ClaimTarget names the report a claim is filed against. Exactly one of the
// two ids must be set.
type ClaimTarget struct {
	LostReportID  *uuid.UUID
	FoundReportID *uuid.UUID
}

// ClaimService owns the claim state machine:
//
//	PENDING -> APPROVED | REJECTED   (Review, once)
//	APPROVED | REJECTED -> PENDING   (Rollback, by the reviewing admin)
//
// Every transition is a conditional update inside one transaction.
type ClaimService struct {
	db       *gorm.DB
	clock    clock.Clock
	notifier Notifier
}

func NewClaimService(db *gorm.DB, clk clock.Clock, notifier Notifier) *ClaimService {
	return &ClaimService{db: db, clock: clk, notifier: notifier}
}

func (s *ClaimService) Create(requesterID uuid.UUID, target ClaimTarget, req *dto.CreateClaimRequest) (*models.ClaimRequest, error) {
	if (target.LostReportID == nil) == (target.FoundReportID == nil) {
		return nil, ErrAmbiguousTarget
	}
	contact := strings.TrimSpace(req.ContactInformation)
	if contact == "" {
		return nil, ErrMissingContact
	}

	claim := models.ClaimRequest{
		ID:                 uuid.New(),
		RequesterID:        requesterID,
		LostReportID:       target.LostReportID,
		FoundReportID:      target.FoundReportID,
		ContactInformation: contact,
		ProofDescription:   strings.TrimSpace(req.ProofDescription),
		AdditionalDetails:  strings.TrimSpace(req.AdditionalDetails),
		Status:             models.ClaimPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var requester models.Principal
		if err := tx.First(&requester, "id = ?", requesterID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPrincipalNotFound
			}
			return fmt.Errorf("failed to load requester: %w", err)
		}
		if requester.IsAdministrator() {
			return ErrNotRequester
		}

		var targetModel interface{} = &models.LostReport{}
		column, targetID := "lost_report_id", target.LostReportID
		if target.FoundReportID != nil {
			targetModel = &models.FoundReport{}
			column, targetID = "found_report_id", target.FoundReportID
		}

		var n int64
		if err := tx.Model(targetModel).Where("id = ?", *targetID).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to look up claim target: %w", err)
		}
		if n == 0 {
			return ErrTargetNotFound
		}

		if err := tx.Model(&models.ClaimRequest{}).
			Where("requester_id = ? AND "+column+" = ?", requesterID, *targetID).
			Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check existing claims: %w", err)
		}
		if n > 0 {
			return ErrDuplicateClaim
		}

		if err := tx.Create(&claim).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateClaim
			}
			return fmt.Errorf("failed to create claim request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim request created", "action", "claim_create", "claim_id", claim.ID.String(), "principal_id", requesterID.String())
	return &claim, nil
}

// Review records an admin decision on a pending claim and notifies the
// requester.
func (s *ClaimService) Review(claimID uuid.UUID, status string, adminID uuid.UUID) (*models.ClaimRequest, error) {
	decision := models.ClaimStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !decision.IsDecision() {
		return nil, ErrInvalidClaimStatus
	}

	var claim *models.ClaimRequest
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if claim, err = loadClaim(lockForUpdate(tx), claimID); err != nil {
			return err
		}

		var admin models.Principal
		if err := tx.First(&admin, "id = ?", adminID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdminNotFound
			}
			return fmt.Errorf("failed to load admin: %w", err)
		}
		if !admin.IsAdministrator() {
			return ErrAdminNotFound
		}

		if claim.Status != models.ClaimPending {
			return ErrAlreadyReviewed
		}

		now := s.clock.Now()
		res := tx.Model(&models.ClaimRequest{}).
			Where("id = ? AND status = ?", claimID, models.ClaimPending).
			Updates(map[string]interface{}{
				"status":      decision,
				"reviewer_id": adminID,
				"reviewed_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to review claim request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyReviewed
		}

		claim.Status = decision
		claim.ReviewerID = &adminID
		claim.ReviewedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim request reviewed", "action", "claim_review", "claim_id", claimID.String(),
		"principal_id", adminID.String(), "status", string(decision))
	if claim.Requester != nil {
		s.notify(claim, mailer.ClaimDecisionMessage(claim.Requester.Email, claim.Requester.Name, claim.ItemName(), string(decision)))
	}
	return claim, nil
}

// Rollback returns a reviewed claim to PENDING. Only the admin who reviewed
// it may do so; a claim that is already pending is left as is.
func (s *ClaimService) Rollback(claimID, adminID uuid.UUID) (*models.ClaimRequest, error) {
	var claim *models.ClaimRequest
	changed := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		if claim, err = loadClaim(lockForUpdate(tx), claimID); err != nil {
			return err
		}
		if claim.ReviewerID == nil {
			return ErrNotReviewed
		}
		if *claim.ReviewerID != adminID {
			return ErrWrongAdmin
		}
		if claim.Status == models.ClaimPending {
			return nil
		}

		res := tx.Model(&models.ClaimRequest{}).
			Where("id = ? AND status = ? AND reviewer_id = ?", claimID, claim.Status, adminID).
			Updates(map[string]interface{}{
				"status":      models.ClaimPending,
				"reviewer_id": nil,
				"reviewed_at": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to roll back claim request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotReviewed
		}

		claim.Status = models.ClaimPending
		claim.ReviewerID = nil
		claim.ReviewedAt = nil
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		slog.Info("claim request rolled back", "action", "claim_rollback", "claim_id", claimID.String(), "principal_id", adminID.String())
		if claim.Requester != nil {
			s.notify(claim, mailer.ClaimRollbackMessage(claim.Requester.Email, claim.Requester.Name, claim.ItemName()))
		}
	}
	return claim, nil
}

// Delete removes a claim. Requesters may delete their own claims while they
// are pending; admins may delete any claim.
func (s *ClaimService) Delete(claimID uuid.UUID, actor Actor) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var claim models.ClaimRequest
		if err := lockForUpdate(tx).First(&claim, "id = ?", claimID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClaimNotFound
			}
			return fmt.Errorf("failed to load claim request: %w", err)
		}

		q := tx.Where("id = ?", claimID)
		if !actor.Admin {
			if claim.RequesterID != actor.ID {
				return ErrNotOwner
			}
			if claim.Status != models.ClaimPending {
				return ErrNotPending
			}
			q = q.Where("status = ?", models.ClaimPending)
		}

		res := q.Delete(&models.ClaimRequest{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete claim request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotPending
		}
		return nil
	})
}

func (s *ClaimService) All() ([]models.ClaimRequest, error) {
	return s.list(s.db)
}

func (s *ClaimService) ByStatus(status string) ([]models.ClaimRequest, error) {
	st := models.ClaimStatus(strings.ToUpper(strings.TrimSpace(status)))
	if !st.Valid() {
		return nil, ErrUnknownClaimStatus
	}
	return s.list(s.db.Where("status = ?", st))
}

func (s *ClaimService) ByOwner(requesterID uuid.UUID) ([]models.ClaimRequest, error) {
	return s.list(s.db.Where("requester_id = ?", requesterID))
}

// ByID returns a claim to its requester or to an admin.
func (s *ClaimService) ByID(claimID uuid.UUID, viewer Actor) (*models.ClaimRequest, error) {
	claim, err := loadClaim(s.db, claimID)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(claim.RequesterID) {
		return nil, ErrForbidden
	}
	return claim, nil
}

func (s *ClaimService) list(q *gorm.DB) ([]models.ClaimRequest, error) {
	var claims []models.ClaimRequest
	err := q.Preload("Requester").Preload("LostReport").Preload("FoundReport").
		Order("created_at DESC").Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list claim requests: %w", err)
	}
	return claims, nil
}

func (s *ClaimService) notify(claim *models.ClaimRequest, msg mailer.Message) {
	if s.notifier == nil {
		return
	}
	if !s.notifier.Enqueue(msg) {
		slog.Error("claim notification not queued", "action", "notify", "claim_id", claim.ID.String())
	}
}

func loadClaim(db *gorm.DB, id uuid.UUID) (*models.ClaimRequest, error) {
	var claim models.ClaimRequest
	err := db.Preload("Requester").Preload("LostReport").Preload("FoundReport").
		First(&claim, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, fmt.Errorf("failed to load claim request: %w", err)
	}
	return &claim, nil
}
