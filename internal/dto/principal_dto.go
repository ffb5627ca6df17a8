package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/google/uuid"
)

// RegisterRequest is used for both self-registration and admin creation.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 150), is.Email),
		validation.Field(&r.Phone, validation.Required, validation.Length(5, 20)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

// UpdateProfileRequest changes name and phone. Password is changed only when
// non-empty.
type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Password string `json:"password,omitempty"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Phone, validation.Required, validation.Length(5, 20)),
		validation.Field(&r.Password, validation.Length(8, 72)),
	)
}

type PrincipalResponse struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func NewPrincipalResponse(p *models.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:        p.ID,
		Kind:      string(p.Kind),
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Role:      string(p.Role),
		CreatedAt: p.CreatedAt,
	}
}

func NewPrincipalList(ps []models.Principal) []PrincipalResponse {
	out := make([]PrincipalResponse, 0, len(ps))
	for i := range ps {
		out = append(out, NewPrincipalResponse(&ps[i]))
	}
	return out
}
