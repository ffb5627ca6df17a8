package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/clock"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid  = errors.New("token is invalid")
	ErrTokenExpired  = errors.New("token has expired")
	ErrMissingSecret = errors.New("token signing secret is not configured")
)

const (
	ClaimSubject     = "sub"
	ClaimRole        = "role"
	ClaimAuthorities = "authorities"
	ClaimName        = "name"
	ClaimIssuedAt    = "iat"
	ClaimExpiresAt   = "exp"
)

// Claims is the decoded payload of a session token.
type Claims struct {
	Subject     string
	Name        string
	Role        string
	Authorities string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Codec signs and verifies HS256 session tokens. It holds no mutable state
// and is safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewCodec(secret string, ttl time.Duration, clk clock.Clock) *Codec {
	if clk == nil {
		clk = clock.System{}
	}
	return &Codec{secret: []byte(secret), ttl: ttl, clock: clk}
}

func (c *Codec) TTL() time.Duration { return c.ttl }

// SigningKey is the HS256 key, for middleware that extracts tokens.
func (c *Codec) SigningKey() []byte { return c.secret }

// Mint issues a token for subject valid for the codec's TTL.
func (c *Codec) Mint(subject, name, role string) (string, error) {
	if len(c.secret) == 0 {
		return "", ErrMissingSecret
	}
	now := c.clock.Now()
	claims := jwt.MapClaims{
		ClaimSubject:     subject,
		ClaimRole:        role,
		ClaimAuthorities: Authority(role),
		ClaimName:        name,
		ClaimIssuedAt:    now.Unix(),
		ClaimExpiresAt:   now.Add(c.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of raw.
func (c *Codec) Verify(raw string) (*Claims, error) {
	if len(c.secret) == 0 {
		return nil, ErrMissingSecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.clock.Now),
	)
	parsed, err := parser.Parse(raw, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	claims := FromMapClaims(mc)
	return &claims, nil
}

// Extract returns one claim of raw without verifying it. Absent claims yield
// an empty string; only a token that cannot be decoded is an error.
func (c *Codec) Extract(raw, claim string) (string, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	switch v := mc[claim].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case float64:
		return fmt.Sprintf("%d", int64(v)), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// FromMapClaims converts decoded JWT claims. Missing fields are left empty.
func FromMapClaims(mc jwt.MapClaims) Claims {
	var claims Claims
	claims.Subject, _ = mc[ClaimSubject].(string)
	claims.Name, _ = mc[ClaimName].(string)
	claims.Role, _ = mc[ClaimRole].(string)
	claims.Authorities, _ = mc[ClaimAuthorities].(string)
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time.UTC()
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time.UTC()
	}
	return claims
}

// Authority maps a role name to its granted authority, e.g. "ROLE_ADMIN".
func Authority(role string) string {
	return "ROLE_" + strings.ToUpper(role)
}
