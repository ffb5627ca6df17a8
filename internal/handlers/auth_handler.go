package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService      *services.AuthService
	principalService *services.PrincipalService
	resetService     *services.PasswordReset
}

func NewAuthHandler(auth *services.AuthService, principals *services.PrincipalService, reset *services.PasswordReset) *AuthHandler {
	return &AuthHandler{authService: auth, principalService: principals, resetService: reset}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.principalService.Register(&req)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPrincipalResponse(p))
}

func (h *AuthHandler) VerifyCredentials(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.VerifyCredentials(req.Email, req.Password); err != nil {
		return respondError(c, err, fiber.StatusForbidden)
	}
	return c.JSON(dto.MessageResponse{Message: "OTP sent to your email"})
}

func (h *AuthHandler) ConfirmOTP(c *fiber.Ctx) error {
	var req dto.ConfirmOTPRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.ConfirmOTP(req.Email, req.OTP)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) DirectLogin(c *fiber.Ctx) error {
	var req dto.CredentialsRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	resp, err := h.authService.DirectLogin(req.Email, req.Password)
	if err != nil {
		return respondError(c, err, fiber.StatusForbidden)
	}
	return c.JSON(resp)
}

// ValidateToken accepts the token in the body or as a bearer header.
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
	}
	raw := req.Token
	if raw == "" {
		raw = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	if strings.TrimSpace(raw) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Token is required")
	}

	resp, err := h.authService.IntrospectToken(raw)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *AuthHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.ResetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	h.resetService.RequestReset(req.Email)
	return c.JSON(dto.MessageResponse{
		Message: "If an account exists for that email, a password reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	if err := h.resetService.ConfirmReset(c.Query("token"), c.Query("newPassword")); err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(dto.MessageResponse{Message: "Password has been reset successfully"})
}
