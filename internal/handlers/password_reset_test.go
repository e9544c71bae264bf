package handlers_test

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mealmart/internal/models"
)

func TestForgotPasswordDoesNotRevealAccounts(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	seedUser(t, db, "alice@example.com", "supersecret", true, false)

	known := doJSON(t, app, fiber.MethodPost, "/api/auth/forgot-password", fiber.Map{
		"email": "alice@example.com",
	}, "")
	unknown := doJSON(t, app, fiber.MethodPost, "/api/auth/forgot-password", fiber.Map{
		"email": "nobody@example.com",
	}, "")

	assert.Equal(t, known.StatusCode, unknown.StatusCode)
	assert.Equal(t, readBody(t, known), readBody(t, unknown))

	var count int64
	db.Model(&models.EmailOTP{}).Where("email = ?", "alice@example.com").Count(&count)
	assert.EqualValues(t, 1, count)
	db.Model(&models.EmailOTP{}).Where("email = ?", "nobody@example.com").Count(&count)
	assert.Zero(t, count)
}

func TestForgotPasswordSkipsInactiveUsers(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	seedUser(t, db, "bob@example.com", "supersecret", false, false)

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/forgot-password", fiber.Map{
		"email": "bob@example.com",
	}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&models.EmailOTP{}).Count(&count)
	assert.Zero(t, count)
}

func TestResetPasswordRoundTrip(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	seedUser(t, db, "alice@example.com", "oldpassword1", true, false)

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/forgot-password", fiber.Map{
		"email": "alice@example.com",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	otp := latestOTP(t, db, "alice@example.com")
	require.Equal(t, models.OTPPurposeReset, otp.Purpose)

	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/reset-password", fiber.Map{
		"email":     "alice@example.com",
		"code":      otp.Code,
		"new_password":  "newpassword1",
		"new_password2": "newpassword1",
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fresh models.EmailOTP
	require.NoError(t, db.First(&fresh, "id = ?", otp.ID).Error)
	assert.True(t, fresh.IsUsed)

	// Old password no longer works, new one does.
	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "oldpassword1",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "newpassword1",
	}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The reset code is single-use.
	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/reset-password", fiber.Map{
		"email":     "alice@example.com",
		"code":      otp.Code,
		"new_password":  "anotherpass1",
		"new_password2": "anotherpass1",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResetPasswordRejectsMismatch(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	seedUser(t, db, "alice@example.com", "oldpassword1", true, false)
	doJSON(t, app, fiber.MethodPost, "/api/auth/forgot-password", fiber.Map{"email": "alice@example.com"}, "")
	otp := latestOTP(t, db, "alice@example.com")

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/reset-password", fiber.Map{
		"email":     "alice@example.com",
		"code":      otp.Code,
		"new_password":  "newpassword1",
		"new_password2": "different111",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var fresh models.EmailOTP
	require.NoError(t, db.First(&fresh, "id = ?", otp.ID).Error)
	assert.False(t, fresh.IsUsed)
}

func TestResetPasswordRejectsWrongCode(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	seedUser(t, db, "alice@example.com", "oldpassword1", true, false)
	doJSON(t, app, fiber.MethodPost, "/api/auth/forgot-password", fiber.Map{"email": "alice@example.com"}, "")

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/reset-password", fiber.Map{
		"email":     "alice@example.com",
		"code":      "000000",
		"new_password":  "newpassword1",
		"new_password2": "newpassword1",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestResetPasswordRejectsExpiredCode(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	seedUser(t, db, "alice@example.com", "oldpassword1", true, false)
	doJSON(t, app, fiber.MethodPost, "/api/auth/forgot-password", fiber.Map{"email": "alice@example.com"}, "")
	otp := latestOTP(t, db, "alice@example.com")

	require.NoError(t, db.Model(&models.EmailOTP{}).
		Where("id = ?", otp.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	resp := doJSON(t, app, fiber.MethodPost, "/api/auth/reset-password", fiber.Map{
		"email":     "alice@example.com",
		"code":      otp.Code,
		"new_password":  "newpassword1",
		"new_password2": "newpassword1",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var fresh models.EmailOTP
	require.NoError(t, db.First(&fresh, "id = ?", otp.ID).Error)
	assert.False(t, fresh.IsUsed)

	// Old password still valid after a failed reset.
	resp = doJSON(t, app, fiber.MethodPost, "/api/auth/login", fiber.Map{
		"email":    "alice@example.com",
		"password": "oldpassword1",
	}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
