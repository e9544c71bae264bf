package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/mealmart/internal/middleware"
	"github.com/example/mealmart/internal/models"
	"github.com/example/mealmart/internal/utils"
)

// CartHandler manages the authenticated user's open cart.
type CartHandler struct {
	db *gorm.DB
}

// NewCartHandler constructs CartHandler.
func NewCartHandler(db *gorm.DB) *CartHandler {
	return &CartHandler{db: db}
}

// currentCart returns the user's open cart, creating one if absent.
func (h *CartHandler) currentCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := h.db.Where("user_id = ? AND is_paid = ?", userID, false).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart = models.Cart{UserID: userID}
		if err := h.db.Create(&cart).Error; err != nil {
			return nil, err
		}
		return &cart, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// GetCart returns the open cart with its items.
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.currentCart(userID)
	if err != nil {
		return err
	}

	var full models.Cart
	if err := h.db.Preload("Items").Preload("Items.Product").Preload("Coupon").
		First(&full, "id = ?", cart.ID).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": full})
}

type cartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

// AddItem adds a product to the cart, merging with an existing line.
func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req cartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return err
	}

	cart, err := h.currentCart(userID)
	if err != nil {
		return err
	}

	var item models.CartItem
	err = h.db.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&item).Error
	switch {
	case err == nil:
		item.Quantity += req.Quantity
		if err := h.db.Save(&item).Error; err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		item = models.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: req.Quantity}
		if err := h.db.Create(&item).Error; err != nil {
			return err
		}
	default:
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": item})
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// UpdateItem changes the quantity of a cart line.
func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req updateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	cart, err := h.currentCart(userID)
	if err != nil {
		return err
	}

	var item models.CartItem
	if err := h.db.Where("id = ? AND cart_id = ?", itemID, cart.ID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "cart item not found")
		}
		return err
	}

	item.Quantity = req.Quantity
	if err := h.db.Save(&item).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": item})
}

// RemoveItem deletes a cart line.
func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	cart, err := h.currentCart(userID)
	if err != nil {
		return err
	}

	if err := h.db.Delete(&models.CartItem{}, "id = ? AND cart_id = ?", itemID, cart.ID).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

type applyCouponRequest struct {
	Code string `json:"code" validate:"required"`
}

// ApplyCoupon attaches an active coupon to the open cart.
func (h *CartHandler) ApplyCoupon(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req applyCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var coupon models.Coupon
	if err := h.db.Where("code = ? AND active = ?", req.Code, true).First(&coupon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid or inactive coupon")
		}
		return err
	}

	cart, err := h.currentCart(userID)
	if err != nil {
		return err
	}

	cart.CouponID = &coupon.ID
	if err := h.db.Save(cart).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": cart})
}
