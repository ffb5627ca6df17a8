package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"gorm.io/gorm"
)

var (
	ErrInvalidPhone = newError(KindValidation, "phone number is invalid")
	ErrInvalidKind  = newError(KindValidation, "kind must be REPORTER or ADMINISTRATOR")
)

// PrincipalService manages reporter and administrator accounts.
type PrincipalService struct {
	db     *gorm.DB
	hasher PasswordHasher
	region string
}

func NewPrincipalService(db *gorm.DB, hasher PasswordHasher, phoneRegion string) *PrincipalService {
	return &PrincipalService{db: db, hasher: hasher, region: strings.ToUpper(phoneRegion)}
}

// Register creates a reporter. The role is always USER.
func (s *PrincipalService) Register(req *dto.RegisterRequest) (*models.Principal, error) {
	return s.create(req, models.KindReporter, models.RoleUser)
}

func (s *PrincipalService) CreateAdmin(req *dto.RegisterRequest) (*models.Principal, error) {
	return s.create(req, models.KindAdministrator, models.RoleAdmin)
}

// SeedAdmin creates the administrator described by req unless a principal
// with that email already exists. It reports whether an account was created.
func (s *PrincipalService) SeedAdmin(req *dto.RegisterRequest) (bool, error) {
	if err := req.Validate(); err != nil {
		return false, fmt.Errorf("invalid seed admin: %w", err)
	}
	if _, err := s.CreateAdmin(req); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *PrincipalService) create(req *dto.RegisterRequest, kind models.PrincipalKind, role models.Role) (*models.Principal, error) {
	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	email := normalizeEmail(req.Email)

	var n int64
	if err := s.db.Model(&models.Principal{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if n > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	p := models.Principal{
		ID:           uuid.New(),
		Kind:         kind,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.db.Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create principal: %w", err)
	}

	slog.Info("principal created", "action", "register", "principal_id", p.ID.String(), "kind", string(kind))
	return &p, nil
}

// normalizePhone parses raw in the configured default region and returns
// it in E.164 form.
func (s *PrincipalService) normalizePhone(raw string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), s.region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// ByEmail resolves the principal behind an authenticated identity.
func (s *PrincipalService) ByEmail(email string) (*models.Principal, error) {
	var p models.Principal
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return &p, nil
}

func (s *PrincipalService) Get(id uuid.UUID, viewer Actor) (*models.Principal, error) {
	if !viewer.CanAccess(id) {
		return nil, ErrForbidden
	}
	return findPrincipal(s.db, id)
}

// List returns every principal, or only those of kind when it is set.
func (s *PrincipalService) List(kind string) ([]models.Principal, error) {
	q := s.db.Order("created_at ASC")
	if kind != "" {
		k := models.PrincipalKind(strings.ToUpper(kind))
		if k != models.KindReporter && k != models.KindAdministrator {
			return nil, ErrInvalidKind
		}
		q = q.Where("kind = ?", k)
	}

	var out []models.Principal
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list principals: %w", err)
	}
	return out, nil
}

// UpdateProfile changes name and phone, and the password when one is given.
func (s *PrincipalService) UpdateProfile(id uuid.UUID, viewer Actor, req *dto.UpdateProfileRequest) (*models.Principal, error) {
	if !viewer.CanAccess(id) {
		return nil, ErrForbidden
	}
	p, err := findPrincipal(s.db, id)
	if err != nil {
		return nil, err
	}
	phone, err := s.normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":  strings.TrimSpace(req.Name),
		"phone": phone,
	}
	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	if err := s.db.Model(p).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update principal: %w", err)
	}
	return findPrincipal(s.db, id)
}

// Delete removes a principal together with the reports they filed, every
// claim against those reports, and their own claims. Claims the principal
// reviewed as an admin go back to PENDING.
func (s *PrincipalService) Delete(id uuid.UUID, viewer Actor) error {
	if !viewer.CanAccess(id) {
		return ErrForbidden
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		p, err := findPrincipal(lockForUpdate(tx), id)
		if err != nil {
			return err
		}

		var lostIDs, foundIDs []uuid.UUID
		if err := tx.Model(&models.LostReport{}).Where("owner_id = ?", id).Pluck("id", &lostIDs).Error; err != nil {
			return fmt.Errorf("failed to list lost items: %w", err)
		}
		if err := tx.Model(&models.FoundReport{}).Where("reporter_id = ?", id).Pluck("id", &foundIDs).Error; err != nil {
			return fmt.Errorf("failed to list found items: %w", err)
		}
		if err := purgeLost(tx, lostIDs); err != nil {
			return err
		}
		if err := purgeFound(tx, foundIDs); err != nil {
			return err
		}

		if err := tx.Where("requester_id = ?", id).Delete(&models.ClaimRequest{}).Error; err != nil {
			return fmt.Errorf("failed to delete claims: %w", err)
		}
		if err := tx.Model(&models.ClaimRequest{}).Where("reviewer_id = ?", id).Updates(map[string]interface{}{
			"status":      models.ClaimPending,
			"reviewer_id": nil,
			"reviewed_at": nil,
		}).Error; err != nil {
			return fmt.Errorf("failed to reopen reviewed claims: %w", err)
		}

		if err := tx.Delete(p).Error; err != nil {
			return fmt.Errorf("failed to delete principal: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("principal deleted", "action", "delete_principal", "principal_id", id.String())
	return nil
}

func findPrincipal(db *gorm.DB, id uuid.UUID) (*models.Principal, error) {
	var p models.Principal
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return &p, nil
}
