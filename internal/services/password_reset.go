package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"gorm.io/gorm"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

// PasswordReset sends single-use reset links and applies new passwords.
type PasswordReset struct {
	db      *gorm.DB
	creds   *CredentialStore
	hasher  PasswordHasher
	mailer  mailer.Mailer
	clock   clock.Clock
	ttl     time.Duration
	linkURL string
}

func NewPasswordReset(db *gorm.DB, creds *CredentialStore, hasher PasswordHasher, m mailer.Mailer,
	clk clock.Clock, ttl time.Duration, linkURL string) *PasswordReset {
	return &PasswordReset{db: db, creds: creds, hasher: hasher, mailer: m, clock: clk, ttl: ttl, linkURL: linkURL}
}

func generateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// RequestReset emails a reset link when email belongs to a principal. The
// caller learns nothing either way, so every failure is only logged.
func (r *PasswordReset) RequestReset(email string) {
	p, err := r.creds.FindByEmail(nil, email)
	if err != nil {
		if !errors.Is(err, ErrPrincipalNotFound) {
			slog.Error("reset lookup failed", "action", "request_reset", "error", err)
		}
		return
	}

	raw, err := generateResetToken()
	if err != nil {
		slog.Error("reset token generation failed", "action", "request_reset", "principal_id", p.ID.String(), "error", err)
		return
	}
	err = r.db.Model(&models.Principal{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"reset_token_hash":       hashSecret(raw),
		"reset_token_expires_at": r.clock.Now().Add(r.ttl),
	}).Error
	if err != nil {
		slog.Error("reset token not stored", "action", "request_reset", "principal_id", p.ID.String(), "error", err)
		return
	}

	msg := mailer.ResetLinkMessage(p.Email, r.linkURL, raw)
	if err := r.mailer.Send(msg.To, msg.Subject, msg.Body); err != nil {
		slog.Error("reset link delivery failed", "action", "request_reset", "principal_id", p.ID.String(), "error", err)
	}
}

// ConfirmReset sets a new password for the principal holding token. The
// token and any pending login code are cleared.
func (r *PasswordReset) ConfirmReset(token, newPassword string) error {
	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	hash := hashSecret(token)

	return r.db.Transaction(func(tx *gorm.DB) error {
		var p models.Principal
		if err := lockForUpdate(tx).Where("reset_token_hash = ?", hash).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return fmt.Errorf("failed to look up reset token: %w", err)
		}
		if p.ResetTokenExpiresAt == nil || !r.clock.Now().Before(*p.ResetTokenExpiresAt) {
			return ErrInvalidOrExpiredToken
		}
		if len(newPassword) < minPasswordLen || len(newPassword) > maxPasswordLen {
			return ErrWeakPassword
		}

		pwHash, err := r.hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		res := tx.Model(&models.Principal{}).
			Where("id = ? AND reset_token_hash = ?", p.ID, hash).
			Updates(map[string]interface{}{
				"password_hash":          pwHash,
				"reset_token_hash":       nil,
				"reset_token_expires_at": nil,
				"otp_hash":               nil,
				"otp_expires_at":         nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reset password: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInvalidOrExpiredToken
		}

		slog.Info("password reset", "action", "reset_password", "principal_id", p.ID.String())
		return nil
	})
}
