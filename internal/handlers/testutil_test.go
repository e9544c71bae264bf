package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/mealmart/internal/config"
	"github.com/example/mealmart/internal/database"
	"github.com/example/mealmart/internal/models"
	"github.com/example/mealmart/internal/routes"
	"github.com/example/mealmart/internal/services"
	"github.com/example/mealmart/internal/utils"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) SendEmail(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

type fakeVerifier struct {
	claims *services.GoogleClaims
	err    error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (*services.GoogleClaims, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.claims == nil {
		return nil, errors.New("no claims configured")
	}
	return f.claims, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		OTPExpiry:       15 * time.Minute,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *fakeMailer, *fakeVerifier) {
	t.Helper()

	db := newTestDB(t)
	mailer := &fakeMailer{}
	verifier := &fakeVerifier{}

	app := fiber.New()
	routes.Register(app, db, testConfig(), mailer, verifier)
	return app, db, mailer, verifier
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}, token string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return raw
}

// seedUser inserts a user directly, bypassing the registration flow.
func seedUser(t *testing.T, db *gorm.DB, email, password string, active, staff bool) models.User {
	t.Helper()

	hash, err := utils.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Email:        email,
		FullName:     "Seeded User",
		PasswordHash: hash,
		IsActive:     active,
		IsStaff:      staff,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// tokenFor issues an access token for the given user.
func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()

	cfg := testConfig()
	pair, err := utils.GenerateTokenPair(cfg.JWTSecret, userID, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	require.NoError(t, err)
	return pair.Access
}

// latestOTP fetches the newest code row for an email.
func latestOTP(t *testing.T, db *gorm.DB, email string) models.EmailOTP {
	t.Helper()

	var otp models.EmailOTP
	require.NoError(t, db.Where("email = ?", email).Order("created_at desc").First(&otp).Error)
	return otp
}
