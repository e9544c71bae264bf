package models

import (
	"time"

	"github.com/google/uuid"
)

// Order workflow states and payment modes.
const (
	OrderStatusConfirmed = "confirmed"

	PaymentModeCash   = "cash"
	PaymentModeOnline = "online"

	PaymentStatusCompleted = "completed"
	PaymentStatusPending   = "pending"
)

// Coupon is referenced, never owned, by orders and carts.
type Coupon struct {
	BaseModel
	Code       string     `gorm:"uniqueIndex" json:"code"`
	Discount   float64    `json:"discount"`
	Active     bool       `json:"active"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
}

type Order struct {
	BaseModel
	OrderNumber   string      `gorm:"uniqueIndex" json:"order_number"`
	UserID        uuid.UUID   `gorm:"type:uuid;index" json:"user_id"`
	User          *User       `json:"user,omitempty"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	PaymentMode   string      `json:"payment_mode"`
	CouponID      *uuid.UUID  `gorm:"type:uuid" json:"coupon_id"`
	Coupon        *Coupon     `json:"coupon,omitempty"`
	TotalAmount   float64     `json:"total_amount"`
	Items         []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
	// UnitPrice snapshots the product price at order time; later catalog
	// edits do not touch placed orders.
	UnitPrice float64 `json:"unit_price"`
}

// Payment is recorded only for payment modes that settle immediately.
type Payment struct {
	BaseModel
	OrderID       uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"order_id"`
	Order         *Order    `json:"order,omitempty"`
	Amount        float64   `json:"amount"`
	PaymentStatus string    `json:"payment_status"`
	Reference     string    `gorm:"uniqueIndex" json:"reference"`
}
