package services_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer/mailertest"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/token"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "correct-horse-battery"

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (n *recordingNotifier) Enqueue(msg mailer.Message) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
	return true
}

func (n *recordingNotifier) Messages() []mailer.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]mailer.Message(nil), n.msgs...)
}

type env struct {
	db         *gorm.DB
	clock      *clock.Manual
	mail       *mailertest.Recorder
	notifier   *recordingNotifier
	hasher     services.BcryptHasher
	codec      *token.Codec
	creds      *services.CredentialStore
	otp        *services.OTPChallenge
	auth       *services.AuthService
	principals *services.PrincipalService
	reports    *services.ReportService
	claims     *services.ClaimService
	reset      *services.PasswordReset
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := database.Open(&config.Config{
		DBDriver:   "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "lostfound.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := &env{
		db:       db,
		clock:    clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		mail:     &mailertest.Recorder{},
		notifier: &recordingNotifier{},
		hasher:   services.BcryptHasher{Cost: bcrypt.MinCost},
	}
	e.codec = token.NewCodec("test-secret", 24*time.Hour, e.clock)
	e.creds = services.NewCredentialStore(db, e.hasher)
	e.otp = services.NewOTPChallenge(db, e.creds, e.clock, 5*time.Minute)
	e.auth = services.NewAuthService(e.creds, e.otp, e.codec, e.mail)
	e.principals = services.NewPrincipalService(db, e.hasher, "US")
	e.reports = services.NewReportService(db)
	e.claims = services.NewClaimService(db, e.clock, e.notifier)
	e.reset = services.NewPasswordReset(db, e.creds, e.hasher, e.mail, e.clock, 10*time.Minute, "http://localhost:3000/reset-password")
	return e
}

func (e *env) reporter(t *testing.T, email string) *models.Principal {
	t.Helper()
	p, err := e.principals.Register(&dto.RegisterRequest{
		Name: "Reporter " + email, Email: email, Phone: "(650) 253-0000", Password: testPassword,
	})
	require.NoError(t, err)
	return p
}

func (e *env) admin(t *testing.T, email string) *models.Principal {
	t.Helper()
	p, err := e.principals.CreateAdmin(&dto.RegisterRequest{
		Name: "Admin " + email, Email: email, Phone: "+1 650 253 0000", Password: testPassword,
	})
	require.NoError(t, err)
	return p
}

func (e *env) lost(t *testing.T, owner *models.Principal, name, category, location string) *models.LostReport {
	t.Helper()
	r, err := e.reports.CreateLost(owner.ID, &dto.ReportRequest{
		Name: name, Category: category, Location: location, Date: "2026-02-27",
	})
	require.NoError(t, err)
	return r
}

func (e *env) found(t *testing.T, reporter *models.Principal, name, category, location string) *models.FoundReport {
	t.Helper()
	r, err := e.reports.CreateFound(reporter.ID, &dto.ReportRequest{
		Name: name, Category: category, Location: location, Date: "2026-02-28",
	})
	require.NoError(t, err)
	return r
}

// lastOTP pulls the code out of the most recent OTP email sent to email.
func (e *env) lastOTP(t *testing.T, email string) string {
	t.Helper()
	sent := e.mail.SentTo(email)
	require.NotEmpty(t, sent)
	body := sent[len(sent)-1].Body
	const prefix = "Your OTP is: "
	require.Contains(t, body, prefix)
	i := len(prefix)
	return body[i : i+6]
}
