package routes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/clock"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/mailer/mailertest"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/routes"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/token"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const password = "correct-horse-battery"

type harness struct {
	app        *fiber.App
	mail       *mailertest.Recorder
	dispatcher *mailer.Dispatcher
	principals *services.PrincipalService
}

func newHarness(t *testing.T, mutate func(*config.Config)) *harness {
	t.Helper()
	cfg := &config.Config{
		DBDriver:     "sqlite",
		SQLitePath:   filepath.Join(t.TempDir(), "api.db"),
		JWTSecret:    "routes-secret",
		JWTExpiry:    24 * time.Hour,
		OTPTTL:       5 * time.Minute,
		ResetTTL:     10 * time.Minute,
		ResetURLBase: "http://localhost:3000/reset-password",
		PhoneRegion:  "US",
	}
	if mutate != nil {
		mutate(cfg)
	}

	db, err := database.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	rec := &mailertest.Recorder{}
	dispatcher := mailer.NewDispatcher(rec, 10)
	t.Cleanup(func() {
		dispatcher.Stop()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	clk := clock.System{}
	hasher := services.BcryptHasher{Cost: bcrypt.MinCost}
	creds := services.NewCredentialStore(db, hasher)
	otp := services.NewOTPChallenge(db, creds, clk, cfg.OTPTTL)
	codec := token.NewCodec(cfg.JWTSecret, cfg.JWTExpiry, clk)
	principals := services.NewPrincipalService(db, hasher, cfg.PhoneRegion)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	routes.Setup(app, cfg, codec, routes.Handlers{
		Auth: handlers.NewAuthHandler(
			services.NewAuthService(creds, otp, codec, rec),
			principals,
			services.NewPasswordReset(db, creds, hasher, rec, clk, cfg.ResetTTL, cfg.ResetURLBase),
		),
		Health:     handlers.NewHealthHandler(db),
		Principals: handlers.NewPrincipalHandler(principals),
		Reports:    handlers.NewReportHandler(services.NewReportService(db), principals),
		Claims:     handlers.NewClaimHandler(services.NewClaimService(db, clk, dispatcher), principals),
	})

	return &harness{app: app, mail: rec, dispatcher: dispatcher, principals: principals}
}

func (h *harness) call(t *testing.T, method, target, bearer string, body interface{}) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(b, &v), string(b))
	return v
}

func (h *harness) register(t *testing.T, name, email string) {
	t.Helper()
	status, body := h.call(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name: name, Email: email, Phone: "650-253-0000", Password: password,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
}

// login runs both steps and returns the session token.
func (h *harness) login(t *testing.T, email string) string {
	t.Helper()
	status, body := h.call(t, http.MethodPost, "/api/auth/verify-credentials", "",
		dto.CredentialsRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, status, string(body))

	sent := h.mail.SentTo(email)
	require.NotEmpty(t, sent)
	code := strings.TrimPrefix(sent[len(sent)-1].Body, "Your OTP is: ")[:6]

	status, body = h.call(t, http.MethodPost, "/api/auth/confirm-otp", "", dto.ConfirmOTPRequest{Email: email, OTP: code})
	require.Equal(t, http.StatusOK, status, string(body))
	return decode[dto.AuthResponse](t, body).Token
}

func TestAuthEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	h.register(t, "Ana", "ana@example.com")

	status, body := h.call(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Phone: "650-253-0000", Password: password,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.True(t, decode[dto.ErrorResponse](t, body).Error)

	status, _ = h.call(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(t, http.MethodPost, "/api/auth/verify-credentials", "",
		dto.CredentialsRequest{Email: "ana@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = h.call(t, http.MethodPost, "/api/auth/confirm-otp", "",
		dto.ConfirmOTPRequest{Email: "ana@example.com", OTP: "123456"})
	assert.Equal(t, http.StatusBadRequest, status)

	tok := h.login(t, "ana@example.com")

	status, body = h.call(t, http.MethodPost, "/api/auth/validate-token", "", dto.TokenRequest{Token: tok})
	require.Equal(t, http.StatusOK, status)
	info := decode[dto.IntrospectionResponse](t, body)
	assert.True(t, info.Valid)
	assert.Equal(t, "ana@example.com", info.Username)
	assert.Equal(t, "ROLE_USER", info.Authorities)

	status, body = h.call(t, http.MethodPost, "/api/auth/validate-token", "", dto.TokenRequest{Token: "junk"})
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[dto.IntrospectionResponse](t, body).Valid)

	status, _ = h.call(t, http.MethodPost, "/api/auth/validate-token", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(t, http.MethodPost, "/api/auth/login-direct", "",
		dto.CredentialsRequest{Email: "ana@example.com", Password: password})
	assert.Equal(t, http.StatusNotFound, status, "direct login is off by default")

	status, body = h.call(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, body).DB)
}

func TestDirectLoginWhenEnabled(t *testing.T) {
	h := newHarness(t, func(c *config.Config) { c.DirectLoginEnabled = true })
	h.register(t, "Ana", "ana@example.com")

	status, body := h.call(t, http.MethodPost, "/api/auth/login-direct", "",
		dto.CredentialsRequest{Email: "ana@example.com", Password: password})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user", decode[dto.AuthResponse](t, body).Role)

	status, _ = h.call(t, http.MethodPost, "/api/auth/login-direct", "",
		dto.CredentialsRequest{Email: "ana@example.com", Password: "nope-nope"})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestPasswordResetEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	h.register(t, "Ana", "ana@example.com")

	status, known := h.call(t, http.MethodPost, "/api/auth/request-reset", "", dto.ResetRequest{Email: "ana@example.com"})
	require.Equal(t, http.StatusOK, status)
	status, unknown := h.call(t, http.MethodPost, "/api/auth/request-reset", "", dto.ResetRequest{Email: "ghost@example.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, known, unknown)

	sent := h.mail.SentTo("ana@example.com")
	require.Len(t, sent, 1)
	link, err := url.Parse(strings.TrimSpace(sent[0].Body[strings.Index(sent[0].Body, "http"):]))
	require.NoError(t, err)
	raw := link.Query().Get("token")

	q := url.Values{"token": {raw}, "newPassword": {"a-brand-new-secret"}}
	status, _ = h.call(t, http.MethodPost, "/api/auth/reset-password?"+q.Encode(), "", nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = h.call(t, http.MethodPost, "/api/auth/reset-password?"+q.Encode(), "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(t, http.MethodPost, "/api/auth/verify-credentials", "",
		dto.CredentialsRequest{Email: "ana@example.com", Password: "a-brand-new-secret"})
	assert.Equal(t, http.StatusOK, status)
}

type claimBody struct {
	ID         string  `json:"id"`
	Status     string  `json:"status"`
	ReviewerID *string `json:"reviewer_id"`
}

func TestClaimWorkflowOverHTTP(t *testing.T) {
	h := newHarness(t, nil)
	h.register(t, "Owner", "owner@example.com")
	h.register(t, "Finder", "finder@example.com")
	_, err := h.principals.CreateAdmin(&dto.RegisterRequest{
		Name: "Boss", Email: "boss@example.com", Phone: "650-253-0000", Password: password,
	})
	require.NoError(t, err)

	owner := h.login(t, "owner@example.com")
	finder := h.login(t, "finder@example.com")
	boss := h.login(t, "boss@example.com")

	item := dto.ReportRequest{Name: "Wallet", Category: "Accessories", Location: "Library", Date: "2026-02-27"}

	status, _ := h.call(t, http.MethodPost, "/api/lostItems", "", item)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := h.call(t, http.MethodPost, "/api/lostItems", owner, item)
	require.Equal(t, http.StatusCreated, status, string(body))
	lostID := decode[map[string]interface{}](t, body)["id"].(string)

	status, body = h.call(t, http.MethodPost, "/api/foundItems", finder, item)
	require.Equal(t, http.StatusCreated, status, string(body))
	found := decode[map[string]interface{}](t, body)
	foundID := found["id"].(string)
	assert.Equal(t, lostID, found["matched_lost_item_id"])

	status, body = h.call(t, http.MethodGet, "/api/lostItems/"+lostID, owner, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "FOUND", decode[map[string]interface{}](t, body)["status"])

	claimReq := dto.CreateClaimRequest{ContactInformation: "555-0100", ProofDescription: "My initials are inside"}
	status, _ = h.call(t, http.MethodPost, "/api/claimRequests/create", owner, claimReq)
	assert.Equal(t, http.StatusBadRequest, status, "no target")

	status, body = h.call(t, http.MethodPost, "/api/claimRequests/create?foundItemId="+foundID, owner, claimReq)
	require.Equal(t, http.StatusCreated, status, string(body))
	claim := decode[claimBody](t, body)
	assert.Equal(t, "PENDING", claim.Status)

	status, _ = h.call(t, http.MethodPost, "/api/claimRequests/create?foundItemId="+foundID, owner, claimReq)
	assert.Equal(t, http.StatusBadRequest, status, "duplicate")

	status, _ = h.call(t, http.MethodGet, "/api/claimRequests/"+claim.ID, finder, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = h.call(t, http.MethodGet, "/api/claimRequests/"+claim.ID, owner, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = h.call(t, http.MethodPut, "/api/claimRequests/"+claim.ID+"/status?status=APPROVED", owner, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.call(t, http.MethodPut, "/api/claimRequests/"+claim.ID+"/status?status=APPROVED", boss, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	reviewed := decode[claimBody](t, body)
	assert.Equal(t, "APPROVED", reviewed.Status)
	require.NotNil(t, reviewed.ReviewerID)

	status, _ = h.call(t, http.MethodPut, "/api/claimRequests/"+claim.ID+"/status?status=REJECTED", boss, nil)
	assert.Equal(t, http.StatusBadRequest, status, "already reviewed")

	status, _ = h.call(t, http.MethodPut, "/api/claimRequests/"+claim.ID+"/status?status=BOGUS", boss, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(t, http.MethodDelete, "/api/claimRequests/"+claim.ID, owner, nil)
	assert.Equal(t, http.StatusBadRequest, status, "owner cannot delete a reviewed claim")

	status, body = h.call(t, http.MethodGet, "/api/claimRequests/claimsByStatus?status=APPROVED", boss, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]claimBody](t, body), 1)

	status, body = h.call(t, http.MethodPut, "/api/claimRequests/rollback/"+claim.ID, boss, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "PENDING", decode[claimBody](t, body).Status)

	status, body = h.call(t, http.MethodGet, "/api/claimRequests/my-claims", owner, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]claimBody](t, body), 1)

	status, _ = h.call(t, http.MethodGet, "/api/claimRequests/all", owner, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = h.call(t, http.MethodGet, "/api/claimRequests/all", boss, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = h.call(t, http.MethodDelete, "/api/claimRequests/"+claim.ID, owner, nil)
	assert.Equal(t, http.StatusOK, status)

	h.dispatcher.Stop()
	notes := h.mail.SentTo("owner@example.com")
	subjects := make([]string, 0, len(notes))
	for _, m := range notes {
		subjects = append(subjects, m.Subject)
	}
	assert.Contains(t, subjects, "Update on Your Claim Request")
	assert.Contains(t, subjects, "Your Claim Request Status Has Changed")
}

func TestPrincipalEndpoints(t *testing.T) {
	h := newHarness(t, nil)
	h.register(t, "Ana", "ana@example.com")
	h.register(t, "Bob", "bob@example.com")
	_, err := h.principals.CreateAdmin(&dto.RegisterRequest{
		Name: "Boss", Email: "boss@example.com", Phone: "650-253-0000", Password: password,
	})
	require.NoError(t, err)

	ana := h.login(t, "ana@example.com")
	bob := h.login(t, "bob@example.com")
	boss := h.login(t, "boss@example.com")

	status, _ := h.call(t, http.MethodGet, "/api/principals", ana, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := h.call(t, http.MethodGet, "/api/principals?kind=REPORTER", boss, nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]dto.PrincipalResponse](t, body)
	require.Len(t, list, 2)
	var anaID string
	for _, p := range list {
		if p.Email == "ana@example.com" {
			anaID = p.ID.String()
		}
	}
	require.NotEmpty(t, anaID)

	status, _ = h.call(t, http.MethodGet, "/api/principals/"+anaID, bob, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.call(t, http.MethodPut, "/api/principals/"+anaID, ana, dto.UpdateProfileRequest{
		Name: "Ana B.", Phone: "212-736-5000",
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "+12127365000", decode[dto.PrincipalResponse](t, body).Phone)

	status, _ = h.call(t, http.MethodPost, "/api/admins", ana, dto.RegisterRequest{
		Name: "Eve", Email: "eve@example.com", Phone: "650-253-0000", Password: password,
	})
	assert.Equal(t, http.StatusForbidden, status)

	status, body = h.call(t, http.MethodPost, "/api/admins", boss, dto.RegisterRequest{
		Name: "Eve", Email: "eve@example.com", Phone: "650-253-0000", Password: password,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "ADMIN", decode[dto.PrincipalResponse](t, body).Role)

	status, _ = h.call(t, http.MethodGet, "/api/principals/not-a-uuid", boss, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.call(t, http.MethodDelete, "/api/principals/"+anaID, ana, nil)
	assert.Equal(t, http.StatusOK, status)

	// The token outlives the account but no longer resolves to anyone.
	status, _ = h.call(t, http.MethodGet, "/api/principals/"+anaID, ana, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestHealthPingsDatabase(t *testing.T) {
	h := newHarness(t, nil)

	status, body := h.call(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[dto.HealthResponse](t, body)
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, "ok", got.DB)
}
