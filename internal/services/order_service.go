package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/mealmart/internal/logger"
	"github.com/example/mealmart/internal/models"
)

// Classified placement failures. Everything else bubbling out of
// PlaceOrder is an internal error and must not reach the client verbatim.
var (
	ErrUserNotFound      = errors.New("user not found or not active")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidCoupon     = errors.New("invalid or inactive coupon")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

// OrderLine is one (product, quantity) entry of a placement request.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderService owns the order placement transaction.
type OrderService struct {
	db *gorm.DB
}

// NewOrderService constructs OrderService.
func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// PlaceOrder creates an order with its items for the given user,
// applying an optional coupon, decrementing stock and recording a
// payment for cash-equivalent modes. The whole thing runs in one
// transaction: any failure leaves no order, item, stock or payment
// mutation behind.
func (s *OrderService) PlaceOrder(userEmail string, lines []OrderLine, couponCode, paymentMode string) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
	}

	paymentMode = strings.ToLower(strings.TrimSpace(paymentMode))
	if paymentMode == "" {
		paymentMode = models.PaymentModeCash
	}

	var order models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("email = ? AND is_active = ?", strings.ToLower(userEmail), true).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		var total float64
		products := make([]models.Product, 0, len(lines))
		for _, line := range lines {
			var product models.Product
			if err := tx.First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			total += product.Price * float64(line.Quantity)
			products = append(products, product)
		}

		var coupon *models.Coupon
		if couponCode != "" {
			var cp models.Coupon
			if err := tx.Where("code = ? AND active = ?", couponCode, true).
				First(&cp).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInvalidCoupon
				}
				return err
			}
			now := time.Now()
			if cp.ValidFrom != nil && now.Before(*cp.ValidFrom) {
				return ErrInvalidCoupon
			}
			if cp.ValidUntil != nil && now.After(*cp.ValidUntil) {
				return ErrInvalidCoupon
			}
			total -= cp.Discount
			coupon = &cp
		}

		// A discount never drives the total negative.
		if total < 0 {
			total = 0
		}

		paymentStatus := models.PaymentStatusPending
		if paymentMode == models.PaymentModeCash {
			paymentStatus = models.PaymentStatusCompleted
		}

		order = models.Order{
			OrderNumber:   uuid.NewString(),
			UserID:        user.ID,
			Status:        models.OrderStatusConfirmed,
			PaymentStatus: paymentStatus,
			PaymentMode:   paymentMode,
			TotalAmount:   total,
		}
		if coupon != nil {
			order.CouponID = &coupon.ID
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for i, line := range lines {
			item := models.OrderItem{
				OrderID:   order.ID,
				ProductID: products[i].ID,
				Quantity:  line.Quantity,
				UnitPrice: products[i].Price,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, item)

			// Conditional decrement: the guard both enforces the stock
			// floor and prevents two concurrent orders from oversubscribing
			// the same product.
			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", products[i].ID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		if paymentMode == models.PaymentModeCash {
			payment := models.Payment{
				OrderID:       order.ID,
				Amount:        total,
				PaymentStatus: models.PaymentStatusCompleted,
				Reference:     uuid.NewString(),
			}
			if err := tx.Create(&payment).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("user_email", strings.ToLower(userEmail)),
		zap.Float64("total", order.TotalAmount),
		zap.String("payment_mode", paymentMode))

	return &order, nil
}
