package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type PrincipalKind string

const (
	KindReporter      PrincipalKind = "REPORTER"
	KindAdministrator PrincipalKind = "ADMINISTRATOR"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole accepts role names in any case ("admin", "ADMIN").
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Principal is either a reporter or an administrator. Both kinds share one
// table so that email stays unique across them and auth flows look up a
// single place.
type Principal struct {
	ID                  uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Kind                PrincipalKind `gorm:"size:20;not null;index" json:"kind"`
	Name                string        `gorm:"size:100;not null" json:"name"`
	Email               string        `gorm:"size:150;not null;uniqueIndex" json:"email"`
	Phone               string        `gorm:"size:20;not null" json:"phone"`
	PasswordHash        string        `gorm:"not null" json:"-"`
	Role                Role          `gorm:"size:20;not null" json:"role"`
	OTPHash             *string       `gorm:"size:64" json:"-"`
	OTPExpiresAt        *time.Time    `json:"-"`
	ResetTokenHash      *string       `gorm:"size:64;index" json:"-"`
	ResetTokenExpiresAt *time.Time    `json:"-"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

func (p *Principal) IsAdministrator() bool {
	return p.Kind == KindAdministrator
}

// HasPendingOTP reports whether an unexpired code is waiting to be redeemed.
func (p *Principal) HasPendingOTP(now time.Time) bool {
	return p.OTPHash != nil && p.OTPExpiresAt != nil && now.Before(*p.OTPExpiresAt)
}
