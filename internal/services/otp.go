package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var otpSpace = big.NewInt(1_000_000)

// OTPChallenge issues and redeems six-digit one-time codes. Only a hash of
// the code is stored.
type OTPChallenge struct {
	db    *gorm.DB
	creds *CredentialStore
	clock clock.Clock
	ttl   time.Duration
}

func NewOTPChallenge(db *gorm.DB, creds *CredentialStore, clk clock.Clock, ttl time.Duration) *OTPChallenge {
	return &OTPChallenge{db: db, creds: creds, clock: clk, ttl: ttl}
}

func (o *OTPChallenge) TTL() time.Duration { return o.ttl }

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashSecret(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Issue stores a fresh code for p, replacing any earlier one, and returns
// the plaintext code.
func (o *OTPChallenge) Issue(p *models.Principal) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", err
	}
	hash := hashSecret(code)
	expires := o.clock.Now().Add(o.ttl)

	err = o.db.Model(&models.Principal{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"otp_hash":       hash,
		"otp_expires_at": expires,
	}).Error
	if err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}
	p.OTPHash = &hash
	p.OTPExpiresAt = &expires
	return code, nil
}

// Redeem consumes the pending code of the principal with email. A code
// redeems at most once; unknown emails, missing, expired and wrong codes all
// fail with ErrInvalidOTP.
func (o *OTPChallenge) Redeem(email, code string) (*models.Principal, error) {
	var redeemed *models.Principal
	err := o.db.Transaction(func(tx *gorm.DB) error {
		p, err := o.creds.FindByEmail(lockForUpdate(tx), email)
		if err != nil {
			if errors.Is(err, ErrPrincipalNotFound) {
				return ErrInvalidOTP
			}
			return err
		}

		if !p.HasPendingOTP(o.clock.Now()) {
			return ErrInvalidOTP
		}
		hash := hashSecret(code)
		if subtle.ConstantTimeCompare([]byte(hash), []byte(*p.OTPHash)) != 1 {
			return ErrInvalidOTP
		}

		res := tx.Model(&models.Principal{}).
			Where("id = ? AND otp_hash = ?", p.ID, hash).
			Updates(map[string]interface{}{"otp_hash": nil, "otp_expires_at": nil})
		if res.Error != nil {
			return fmt.Errorf("failed to clear otp: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidOTP
		}
		p.OTPHash = nil
		p.OTPExpiresAt = nil
		redeemed = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redeemed, nil
}

// lockForUpdate adds SELECT ... FOR UPDATE on dialects with row locks. SQLite
// serializes writers on its own.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
