package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 10*time.Minute, cfg.ResetTTL)
	assert.False(t, cfg.DirectLoginEnabled)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.AuthRateLimit)
	assert.Equal(t, 60, cfg.APIRateLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("OTP_TTL", "90s")
	t.Setenv("AUTH_DIRECT_LOGIN_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, cfg.OTPTTL)
	assert.True(t, cfg.DirectLoginEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"missing secret", Config{DBDriver: "sqlite"}, "JWT_SECRET"},
		{"postgres without password", Config{DBDriver: "postgres", JWTSecret: "s"}, "DB_PASSWORD"},
		{"seed admin without password", Config{DBDriver: "sqlite", JWTSecret: "s", SeedAdminEmail: "a@b.c", SeedAdminPhone: "1"}, "SEED_ADMIN_PASSWORD"},
		{"unknown driver", Config{DBDriver: "oracle", JWTSecret: "s"}, "unsupported DB_DRIVER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDSN(t *testing.T) {
	cfg := Config{DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "n", DBPort: "5432", DBSSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", cfg.DSN())
}
