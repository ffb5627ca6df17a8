package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

func (h BcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CredentialStore finds principals of either kind by email and checks their
// passwords.
type CredentialStore struct {
	db        *gorm.DB
	hasher    PasswordHasher
	dummyHash string
}

func NewCredentialStore(db *gorm.DB, hasher PasswordHasher) *CredentialStore {
	// Compared against when the email is unknown so both paths cost one hash.
	dummy, _ := hasher.Hash("lostfound-timing-equalizer")
	return &CredentialStore{db: db, hasher: hasher, dummyHash: dummy}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *CredentialStore) FindByEmail(db *gorm.DB, email string) (*models.Principal, error) {
	if db == nil {
		db = s.db
	}
	var p models.Principal
	if err := db.Where("email = ?", normalizeEmail(email)).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return &p, nil
}

// Verify returns the principal when password matches. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *CredentialStore) Verify(email, password string) (*models.Principal, error) {
	p, err := s.FindByEmail(nil, email)
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			s.hasher.Compare(s.dummyHash, password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Compare(p.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}
