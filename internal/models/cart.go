package models

import "github.com/google/uuid"

// Cart is the user's open basket. One unpaid cart per user at a time;
// placing an order is handled separately and marks nothing here.
type Cart struct {
	BaseModel
	UserID   uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	IsPaid   bool       `json:"is_paid"`
	CouponID *uuid.UUID `gorm:"type:uuid" json:"coupon_id"`
	Coupon   *Coupon    `json:"coupon,omitempty"`
	Items    []CartItem `json:"items,omitempty"`
}

type CartItem struct {
	BaseModel
	CartID    uuid.UUID `gorm:"type:uuid;index" json:"cart_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
}
