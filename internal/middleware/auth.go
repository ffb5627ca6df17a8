package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/token"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenKey    = "jwt"
	identityKey = "identity"
)

// Paths that are never inspected for a bearer token.
var publicPaths = []string{
	"/api/health",
	"/api/auth/register",
	"/api/auth/verify-credentials",
	"/api/auth/confirm-otp",
	"/api/auth/login-direct",
	"/api/auth/validate-token",
	"/api/auth/request-reset",
	"/api/auth/reset-password",
}

// Identity is the authenticated caller resolved from a bearer token.
type Identity struct {
	Email     string
	Name      string
	Role      string
	Authority string
}

func isPublic(path string) bool {
	path = strings.TrimSuffix(path, "/")
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return false
}

// Authenticate resolves an HS256 bearer token into an Identity. jwtware
// extracts and pre-checks the token; codec has the final say on signature and
// expiry, using its own clock. Requests without a usable token continue
// unauthenticated; RequireRoles decides whether that is acceptable.
func Authenticate(codec *token.Codec) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Filter: func(c *fiber.Ctx) bool {
			return isPublic(c.Path())
		},
		SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: codec.SigningKey()},
		ContextKey: tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			t, ok := c.Locals(tokenKey).(*jwt.Token)
			if !ok {
				return c.Next()
			}
			claims, err := codec.Verify(t.Raw)
			if err != nil || claims.Subject == "" {
				return c.Next()
			}
			role, ok := models.ParseRole(claims.Role)
			if !ok {
				return c.Next()
			}
			c.Locals(identityKey, &Identity{
				Email:     claims.Subject,
				Name:      claims.Name,
				Role:      string(role),
				Authority: token.Authority(string(role)),
			})
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Next()
		},
	})
}

// GetIdentity returns the caller installed by Authenticate, if any.
func GetIdentity(c *fiber.Ctx) (*Identity, bool) {
	id, ok := c.Locals(identityKey).(*Identity)
	return id, ok && id != nil
}
