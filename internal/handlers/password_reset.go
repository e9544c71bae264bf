package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/mealmart/internal/config"
	"github.com/example/mealmart/internal/models"
	"github.com/example/mealmart/internal/services"
	"github.com/example/mealmart/internal/utils"
)

// PasswordResetHandler manages forgot-password endpoints.
type PasswordResetHandler struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer services.Mailer
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(db *gorm.DB, cfg *config.Config, mailer services.Mailer) *PasswordResetHandler {
	return &PasswordResetHandler{db: db, cfg: cfg, mailer: mailer}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a reset code for active accounts. The response
// is identical whether or not the account exists, so the endpoint
// cannot be used to enumerate registered emails.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	email := strings.ToLower(req.Email)

	var user models.User
	err := h.db.Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return h.genericResponse(c)
	}
	if err != nil {
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to generate code")
	}

	otp := models.EmailOTP{
		Email:     email,
		Code:      code,
		Purpose:   models.OTPPurposeReset,
		ExpiresAt: time.Now().Add(h.cfg.OTPExpiry),
	}
	if err := h.db.Create(&otp).Error; err != nil {
		return err
	}

	go deliverOTP(h.mailer, h.cfg.OTPExpiry, email, code, models.OTPPurposeReset)

	return h.genericResponse(c)
}

func (h *PasswordResetHandler) genericResponse(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"message": "If the email exists, an OTP has been sent.",
	})
}

type resetPasswordRequest struct {
	Email              string `json:"email" validate:"required,email"`
	Code               string `json:"code" validate:"required,len=6"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password2" validate:"required"`
}

// ResetPassword sets a new password after validating the newest unused
// reset code. Credential update and code consumption happen in one
// transaction.
func (h *PasswordResetHandler) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if req.NewPassword != req.NewPasswordConfirm {
		return fiber.NewError(fiber.StatusBadRequest, "passwords do not match")
	}

	email := strings.ToLower(req.Email)

	var otp models.EmailOTP
	err := h.db.Where("email = ? AND purpose = ? AND is_used = ?", email, models.OTPPurposeReset, false).
		Order("created_at desc").
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid code")
		}
		return err
	}

	if otp.Code != req.Code {
		return fiber.NewError(fiber.StatusBadRequest, "invalid code")
	}

	if otp.ExpiresAt.Before(time.Now()) {
		return fiber.NewError(fiber.StatusBadRequest, "code expired")
	}

	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return err
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to hash password")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := consumeOTP(tx, otp.ID); err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("password_hash", passwordHash).Error
	})
	if err != nil {
		if errors.Is(err, errCodeAlreadyUsed) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid code")
		}
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password reset successful",
	})
}
