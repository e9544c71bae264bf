package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/mealmart/internal/config"
	"github.com/example/mealmart/internal/logger"
	"github.com/example/mealmart/internal/models"
	"github.com/example/mealmart/internal/services"
	"github.com/example/mealmart/internal/utils"
)

// errCodeAlreadyUsed signals that the conditional is_used flip affected
// no rows: a concurrent request consumed the code first.
var errCodeAlreadyUsed = errors.New("code already used")

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	db       *gorm.DB
	cfg      *config.Config
	mailer   services.Mailer
	verifier services.GoogleVerifier
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config, mailer services.Mailer, verifier services.GoogleVerifier) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg, mailer: mailer, verifier: verifier}
}

type registerRequest struct {
	FullName        string `json:"full_name" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=15"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password2" validate:"required"`
}

// Register creates a new account (inactive until OTP verification) and
// mails a verification code. Re-registering an unverified email
// overwrites the pending account and resends a fresh code.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if req.Password != req.PasswordConfirm {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	email := strings.ToLower(req.Email)

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	var user models.User
	err = h.db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.IsActive {
			return fiber.NewError(fiber.StatusBadRequest, "user already exists and is active")
		}
		// Abandoned registration: overwrite in place, stay inactive.
		user.FullName = req.FullName
		user.PhoneNumber = req.PhoneNumber
		user.PasswordHash = passwordHash
		if err := h.db.Save(&user).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:        email,
			FullName:     req.FullName,
			PhoneNumber:  req.PhoneNumber,
			PasswordHash: passwordHash,
			IsActive:     false,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	default:
		return err
	}

	if err := h.issueOTP(email, models.OTPPurposeRegister); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"email":        user.Email,
			"full_name":    user.FullName,
			"phone_number": user.PhoneNumber,
			"is_active":    user.IsActive,
		},
	})
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// VerifyOTP activates the account matching the newest unused
// registration code and issues a token pair. Activation and code
// consumption happen in one transaction.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	email := strings.ToLower(req.Email)

	otp, err := h.findCurrentOTP(email, req.Code, models.OTPPurposeRegister)
	if err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := consumeOTP(tx, otp.ID); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("is_active", true).Error
	})
	if err != nil {
		if errors.Is(err, errCodeAlreadyUsed) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid code")
		}
		return err
	}

	tokens, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate tokens")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Account activated",
		"tokens":  tokens,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates an existing user by email and password. Inactive
// accounts are told to verify first rather than getting the generic
// invalid-credentials answer.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	email := strings.ToLower(req.Email)

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return fiber.NewError(fiber.StatusBadRequest, "invalid credentials")
	}

	if !user.IsActive {
		return fiber.NewError(fiber.StatusForbidden, "please verify your email first")
	}

	tokens, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate tokens")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in",
		"tokens":  tokens,
	})
}

type googleLoginRequest struct {
	Token string `json:"token"`
}

// GoogleLogin authenticates via a Google ID token. First sign-in creates
// an already-active account; Google has verified the email for us.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	var req googleLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.Token == "" {
		return fiber.NewError(fiber.StatusBadRequest, "token required")
	}

	claims, err := h.verifier.Verify(c.UserContext(), req.Token)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid token")
	}

	email := strings.ToLower(claims.Email)

	var user models.User
	err = h.db.Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Email:    email,
			FullName: claims.FullName,
			IsActive: true,
		}
		if err := h.db.Create(&user).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	}

	tokens, err := utils.GenerateTokenPair(h.cfg.JWTSecret, user.ID, h.cfg.AccessTokenTTL, h.cfg.RefreshTokenTTL)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate tokens")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Logged in with Google",
		"tokens":  tokens,
	})
}

// issueOTP creates a fresh code row and dispatches it asynchronously.
// Mail failures are logged, never surfaced: the account mutation stands.
func (h *AuthHandler) issueOTP(email, purpose string) error {
	code, err := utils.GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate verification code")
	}

	otp := models.EmailOTP{
		Email:     email,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(h.cfg.OTPExpiry),
	}
	if err := h.db.Create(&otp).Error; err != nil {
		return err
	}

	go deliverOTP(h.mailer, h.cfg.OTPExpiry, email, code, purpose)
	return nil
}

// findCurrentOTP loads the newest unused code for (email, purpose) and
// checks the submitted code against it. Older unused codes are never
// honored once a newer one exists.
func (h *AuthHandler) findCurrentOTP(email, code, purpose string) (*models.EmailOTP, error) {
	var otp models.EmailOTP
	err := h.db.Where("email = ? AND purpose = ? AND is_used = ?", email, purpose, false).
		Order("created_at desc").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusBadRequest, "invalid code")
		}
		return nil, err
	}

	if otp.Code != code {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid code")
	}

	// Expired codes stay unconsumed; a resend is the only remedy.
	if otp.ExpiresAt.Before(time.Now()) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "code expired")
	}

	return &otp, nil
}

// consumeOTP flips is_used with a conditional update so two concurrent
// verifications cannot both succeed on the same code.
func consumeOTP(tx *gorm.DB, otpID interface{}) error {
	res := tx.Model(&models.EmailOTP{}).
		Where("id = ? AND is_used = ?", otpID, false).
		Update("is_used", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errCodeAlreadyUsed
	}
	return nil
}

func deliverOTP(mailer services.Mailer, ttl time.Duration, email, code, purpose string) {
	subject := "Your Mealmart verification code"
	if purpose == models.OTPPurposeReset {
		subject = "Your Mealmart password reset code"
	}
	body := fmt.Sprintf("Your one-time code is %s. It expires in %d minutes.", code, int(ttl.Minutes()))

	if err := mailer.SendEmail(email, subject, body); err != nil {
		logger.L().Warn("otp email delivery failed",
			zap.String("email", email),
			zap.String("purpose", purpose),
			zap.Error(err))
	}
}
