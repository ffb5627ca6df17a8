package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/token"
)

// AuthService runs the two-step login: a password check that emails a
// one-time code, then redemption of that code for a session token.
type AuthService struct {
	creds  *CredentialStore
	otp    *OTPChallenge
	codec  *token.Codec
	mailer mailer.Mailer
}

func NewAuthService(creds *CredentialStore, otp *OTPChallenge, codec *token.Codec, m mailer.Mailer) *AuthService {
	return &AuthService{creds: creds, otp: otp, codec: codec, mailer: m}
}

// VerifyCredentials checks email and password and emails a fresh code. The
// code is delivered synchronously; a delivery failure fails the call.
func (s *AuthService) VerifyCredentials(email, password string) error {
	p, err := s.creds.Verify(email, password)
	if err != nil {
		return err
	}

	code, err := s.otp.Issue(p)
	if err != nil {
		return err
	}

	msg := mailer.OTPMessage(p.Email, code, s.otp.TTL())
	if err := s.mailer.Send(msg.To, msg.Subject, msg.Body); err != nil {
		slog.Error("otp delivery failed", "action", "verify_credentials", "principal_id", p.ID.String(), "error", err)
		return fmt.Errorf("failed to send otp: %w", err)
	}

	slog.Info("otp issued", "action", "verify_credentials", "principal_id", p.ID.String())
	return nil
}

func (s *AuthService) ConfirmOTP(email, code string) (*dto.AuthResponse, error) {
	p, err := s.otp.Redeem(email, code)
	if err != nil {
		return nil, err
	}
	return s.issue(p)
}

// DirectLogin mints a token from a password alone, skipping the code step.
func (s *AuthService) DirectLogin(email, password string) (*dto.AuthResponse, error) {
	p, err := s.creds.Verify(email, password)
	if err != nil {
		return nil, err
	}
	return s.issue(p)
}

// IntrospectToken never fails for a bad or expired token; it reports
// Valid=false instead. Only a codec without a secret is an error.
func (s *AuthService) IntrospectToken(raw string) (*dto.IntrospectionResponse, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	claims, err := s.codec.Verify(raw)
	if err != nil {
		if errors.Is(err, token.ErrMissingSecret) {
			return nil, err
		}
		return &dto.IntrospectionResponse{Valid: false}, nil
	}
	return &dto.IntrospectionResponse{
		Valid:       true,
		Username:    claims.Subject,
		Role:        claims.Role,
		Authorities: claims.Authorities,
	}, nil
}

func (s *AuthService) issue(p *models.Principal) (*dto.AuthResponse, error) {
	signed, err := s.codec.Mint(p.Email, p.Name, string(p.Role))
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: signed,
		Email: p.Email,
		Name:  p.Name,
		Role:  strings.ToLower(string(p.Role)),
	}, nil
}
