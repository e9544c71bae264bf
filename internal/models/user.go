package models

import (
	"time"
)

// User represents an account identified by email. Accounts are created
// inactive at registration and activated by OTP verification; accounts
// created through Google sign-in start active.
type User struct {
	BaseModel
	Email        string  `gorm:"uniqueIndex" json:"email"`
	FullName     string  `json:"full_name"`
	PhoneNumber  string  `json:"phone_number"`
	PasswordHash string  `json:"-"`
	IsActive     bool    `json:"is_active"`
	IsStaff      bool    `json:"is_staff"`
	Orders       []Order `json:"orders,omitempty"`
}

// OTP purposes.
const (
	OTPPurposeRegister = "register"
	OTPPurposeReset    = "reset"
)

// EmailOTP keeps track of one-time codes sent to users. Rows are never
// deleted; only the newest unused code per (email, purpose) is honored,
// so stale codes simply become unreachable.
type EmailOTP struct {
	BaseModel
	Email     string    `gorm:"index" json:"email"`
	Code      string    `json:"-"`
	Purpose   string    `gorm:"index" json:"purpose"`
	ExpiresAt time.Time `json:"expires_at"`
	IsUsed    bool      `json:"is_used"`
}
