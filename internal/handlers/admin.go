package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/mealmart/internal/logger"
	"github.com/example/mealmart/internal/models"
	"github.com/example/mealmart/internal/services"
	"github.com/example/mealmart/internal/utils"
)

// AdminHandler manages staff-only endpoints.
type AdminHandler struct {
	db     *gorm.DB
	orders *services.OrderService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, orders *services.OrderService) *AdminHandler {
	return &AdminHandler{db: db, orders: orders}
}

type orderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type createOrderRequest struct {
	UserEmail   string             `json:"user_email" validate:"required,email"`
	Items       []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	CouponCode  string             `json:"coupon_code"`
	PaymentMode string             `json:"payment_mode"`
}

// CreateOrder places an order on behalf of a user. The placement runs as
// one transaction in the order service; failures are classified so that
// identity misses surface as 404 and state misses as 400, and anything
// unexpected is logged server-side and answered generically.
func (h *AdminHandler) CreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	lines := make([]services.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orders.PlaceOrder(req.UserEmail, lines, req.CouponCode, req.PaymentMode)
	if err != nil {
		status := fiber.StatusBadRequest
		message := err.Error()

		switch {
		case errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrProductNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, services.ErrInvalidCoupon),
			errors.Is(err, services.ErrInsufficientStock),
			errors.Is(err, services.ErrEmptyOrder),
			errors.Is(err, services.ErrInvalidQuantity):
			// 400 with the classified message.
		default:
			logger.L().Error("order placement failed",
				zap.String("user_email", req.UserEmail),
				zap.Error(err))
			message = "order could not be processed"
		}

		return c.Status(status).JSON(fiber.Map{
			"status":  false,
			"message": message,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status":   true,
		"order_id": order.OrderNumber,
	})
}

// SearchUsers returns active users whose email contains the query.
func (h *AdminHandler) SearchUsers(c *fiber.Ctx) error {
	email := strings.ToLower(c.Query("email"))

	var users []models.User
	if err := h.db.Where("is_active = ?", true).
		Where("LOWER(email) LIKE ?", "%"+email+"%").
		Order("email asc").
		Limit(50).
		Find(&users).Error; err != nil {
		return err
	}

	result := make([]fiber.Map, 0, len(users))
	for _, u := range users {
		result = append(result, fiber.Map{
			"email":     u.Email,
			"full_name": u.FullName,
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": result})
}

// ListAllOrders returns all orders with pagination and filtering.
func (h *AdminHandler) ListAllOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("order_number LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").Preload("Coupon").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ListPayments returns all payments with pagination.
func (h *AdminHandler) ListPayments(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Payment{})

	if search := c.Query("search"); search != "" {
		query = query.Where("reference LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var payments []models.Payment
	if err := query.Preload("Order").
		Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&payments).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    payments,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// ListCoupons returns all coupons.
func (h *AdminHandler) ListCoupons(c *fiber.Ctx) error {
	var coupons []models.Coupon
	if err := h.db.Order("created_at desc").Find(&coupons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": coupons})
}

type couponRequest struct {
	Code       string     `json:"code" validate:"required"`
	Discount   float64    `json:"discount" validate:"required,gt=0"`
	Active     bool       `json:"active"`
	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
}

// CreateCoupon persists a new coupon.
func (h *AdminHandler) CreateCoupon(c *fiber.Ctx) error {
	var req couponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	coupon := models.Coupon{
		Code:       req.Code,
		Discount:   req.Discount,
		Active:     req.Active,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
	}
	if err := h.db.Create(&coupon).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	var totalUsers int64
	if err := h.db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		return err
	}

	var totalOrders int64
	if err := h.db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return err
	}

	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var statusCounts []statusCount
	if err := h.db.Model(&models.Order{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return err
	}

	ordersByStatus := make(map[string]int64)
	for _, sc := range statusCounts {
		ordersByStatus[sc.Status] = sc.Count
	}

	var totalRevenue float64
	if err := h.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return err
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var todayRevenue float64
	if err := h.db.Model(&models.Order{}).
		Where("created_at >= ?", startOfDay).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&todayRevenue).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_users":      totalUsers,
			"total_orders":     totalOrders,
			"total_revenue":    totalRevenue,
			"today_revenue":    todayRevenue,
			"orders_by_status": ordersByStatus,
		},
	})
}
