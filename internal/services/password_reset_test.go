package services_test

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetTokenFrom(t *testing.T, e *env, email string) string {
	t.Helper()
	sent := e.mail.SentTo(email)
	require.NotEmpty(t, sent)
	body := sent[len(sent)-1].Body
	link := strings.TrimSpace(body[strings.Index(body, "http"):])
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestPasswordReset(t *testing.T) {
	e := newEnv(t)
	e.reporter(t, "ana@example.com")

	e.reset.RequestReset("ana@example.com")
	raw := resetTokenFrom(t, e, "ana@example.com")
	require.NotEmpty(t, raw)

	var p models.Principal
	require.NoError(t, e.db.First(&p, "email = ?", "ana@example.com").Error)
	require.NotNil(t, p.ResetTokenHash)
	assert.NotEqual(t, raw, *p.ResetTokenHash, "only the hash is stored")

	require.NoError(t, e.reset.ConfirmReset(raw, "a-brand-new-secret"))

	_, err := e.auth.DirectLogin("ana@example.com", "a-brand-new-secret")
	require.NoError(t, err)
	_, err = e.auth.DirectLogin("ana@example.com", testPassword)
	require.ErrorIs(t, err, services.ErrInvalidCredentials)

	err = e.reset.ConfirmReset(raw, "another-secret-1")
	require.ErrorIs(t, err, services.ErrInvalidOrExpiredToken, "tokens are single use")
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	e := newEnv(t)
	e.reset.RequestReset("nobody@example.com")
	assert.Empty(t, e.mail.Sent())
}

func TestPasswordResetExpires(t *testing.T) {
	e := newEnv(t)
	e.reporter(t, "ana@example.com")
	e.reset.RequestReset("ana@example.com")
	raw := resetTokenFrom(t, e, "ana@example.com")

	e.clock.Advance(10*time.Minute + time.Second)

	err := e.reset.ConfirmReset(raw, "a-brand-new-secret")
	require.ErrorIs(t, err, services.ErrInvalidOrExpiredToken)
}

func TestPasswordResetValidation(t *testing.T) {
	e := newEnv(t)
	e.reporter(t, "ana@example.com")
	e.reset.RequestReset("ana@example.com")
	raw := resetTokenFrom(t, e, "ana@example.com")

	assert.ErrorIs(t, e.reset.ConfirmReset("", "a-brand-new-secret"), services.ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, e.reset.ConfirmReset("bogus", "a-brand-new-secret"), services.ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, e.reset.ConfirmReset(raw, "short"), services.ErrWeakPassword)

	// A rejected password leaves the token usable.
	assert.NoError(t, e.reset.ConfirmReset(raw, "long-enough-now"))
}

func TestPasswordResetClearsPendingOTP(t *testing.T) {
	e := newEnv(t)
	e.reporter(t, "ana@example.com")
	require.NoError(t, e.auth.VerifyCredentials("ana@example.com", testPassword))
	code := e.lastOTP(t, "ana@example.com")

	e.reset.RequestReset("ana@example.com")
	require.NoError(t, e.reset.ConfirmReset(resetTokenFrom(t, e, "ana@example.com"), "a-brand-new-secret"))

	_, err := e.auth.ConfirmOTP("ana@example.com", code)
	require.ErrorIs(t, err, services.ErrInvalidOTP)
}

func TestPasswordResetMailFailureIsSwallowed(t *testing.T) {
	e := newEnv(t)
	e.reporter(t, "ana@example.com")
	e.mail.SetFail(true)

	assert.NotPanics(t, func() { e.reset.RequestReset("ana@example.com") })
}
