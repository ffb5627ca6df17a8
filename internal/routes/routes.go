package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/token"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Principals *handlers.PrincipalHandler
	Reports    *handlers.ReportHandler
	Claims     *handlers.ClaimHandler
}

// Route is one entry of the API table. A route with no roles is public.
type Route struct {
	Method  string
	Path    string
	Roles   []models.Role
	Handler fiber.Handler
}

var (
	anyone  []models.Role
	members = []models.Role{models.RoleUser, models.RoleAdmin}
	admins  = []models.Role{models.RoleAdmin}
)

// Table lists every endpoint under /api. Static paths come before the
// parameterized ones they would otherwise be shadowed by.
func Table(cfg *config.Config, h Handlers) []Route {
	table := []Route{
		{fiber.MethodGet, "/health", anyone, h.Health.Check},

		{fiber.MethodPost, "/auth/register", anyone, h.Auth.Register},
		{fiber.MethodPost, "/auth/verify-credentials", anyone, h.Auth.VerifyCredentials},
		{fiber.MethodPost, "/auth/confirm-otp", anyone, h.Auth.ConfirmOTP},
		{fiber.MethodPost, "/auth/validate-token", anyone, h.Auth.ValidateToken},
		{fiber.MethodPost, "/auth/request-reset", anyone, h.Auth.RequestReset},
		{fiber.MethodPost, "/auth/reset-password", anyone, h.Auth.ResetPassword},

		{fiber.MethodPost, "/admins", admins, h.Principals.CreateAdmin},
		{fiber.MethodGet, "/principals", admins, h.Principals.List},
		{fiber.MethodGet, "/principals/:id", members, h.Principals.Get},
		{fiber.MethodPut, "/principals/:id", members, h.Principals.Update},
		{fiber.MethodDelete, "/principals/:id", members, h.Principals.Delete},

		{fiber.MethodPost, "/lostItems", members, h.Reports.CreateLost},
		{fiber.MethodGet, "/lostItems", members, h.Reports.ListLost},
		{fiber.MethodGet, "/lostItems/:id", members, h.Reports.GetLost},
		{fiber.MethodDelete, "/lostItems/:id", members, h.Reports.DeleteLost},

		{fiber.MethodPost, "/foundItems", members, h.Reports.CreateFound},
		{fiber.MethodGet, "/foundItems", members, h.Reports.ListFound},
		{fiber.MethodGet, "/foundItems/:id", members, h.Reports.GetFound},
		{fiber.MethodPut, "/foundItems/:id", members, h.Reports.UpdateFound},
		{fiber.MethodDelete, "/foundItems/:id", members, h.Reports.DeleteFound},

		{fiber.MethodPost, "/claimRequests/create", members, h.Claims.Create},
		{fiber.MethodGet, "/claimRequests/all", admins, h.Claims.All},
		{fiber.MethodGet, "/claimRequests/my-claims", members, h.Claims.Mine},
		{fiber.MethodGet, "/claimRequests/claimsByStatus", admins, h.Claims.ByStatus},
		{fiber.MethodPut, "/claimRequests/rollback/:id", admins, h.Claims.Rollback},
		{fiber.MethodPut, "/claimRequests/:id/status", admins, h.Claims.Review},
		{fiber.MethodGet, "/claimRequests/:id", members, h.Claims.Get},
		{fiber.MethodDelete, "/claimRequests/:id", members, h.Claims.Delete},
	}

	if cfg.DirectLoginEnabled {
		table = append(table, Route{fiber.MethodPost, "/auth/login-direct", anyone, h.Auth.DirectLogin})
	}
	return table
}

func rateLimit(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		},
	})
}

// Setup mounts the table under /api. Bearer tokens are checked with codec. A
// rate limit of zero disables that limiter.
func Setup(app *fiber.App, cfg *config.Config, codec *token.Codec, h Handlers) {
	api := app.Group("/api")

	if cfg.APIRateLimit > 0 {
		api.Use(rateLimit(cfg.APIRateLimit))
	}
	if cfg.AuthRateLimit > 0 {
		api.Use("/auth", rateLimit(cfg.AuthRateLimit))
	}
	api.Use(middleware.Authenticate(codec))

	for _, r := range Table(cfg, h) {
		chain := []fiber.Handler{r.Handler}
		if len(r.Roles) > 0 {
			chain = []fiber.Handler{middleware.RequireRoles(r.Roles...), r.Handler}
		}
		api.Add(r.Method, r.Path, chain...)
	}
}
