package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/mealmart/internal/middleware"
	"github.com/example/mealmart/internal/models"
	"github.com/example/mealmart/internal/utils"
)

// RecipeHandler manages recipes and their categories.
type RecipeHandler struct {
	db *gorm.DB
}

// NewRecipeHandler constructs RecipeHandler.
func NewRecipeHandler(db *gorm.DB) *RecipeHandler {
	return &RecipeHandler{db: db}
}

// ListRecipes returns paginated recipes with optional search, category
// slug and tag filters.
func (h *RecipeHandler) ListRecipes(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Recipe{})

	if search := strings.ToLower(c.Query("search")); search != "" {
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(ingredients) LIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%",
		)
	}

	if category := c.Query("category"); category != "" {
		query = query.Joins("JOIN recipe_categories ON recipe_categories.id = recipes.category_id").
			Where("recipe_categories.slug = ?", category)
	}

	if tag := strings.ToLower(c.Query("tag")); tag != "" {
		query = query.Where("LOWER(tags) LIKE ?", "%"+tag+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var recipes []models.Recipe
	if err := query.Preload("Category").
		Order("recipes.created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&recipes).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    recipes,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetRecipe returns a single recipe by ID.
func (h *RecipeHandler) GetRecipe(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var recipe models.Recipe
	if err := h.db.Preload("Category").First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "recipe not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": recipe})
}

// SimilarRecipes returns up to four recipes sharing the category.
func (h *RecipeHandler) SimilarRecipes(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var recipe models.Recipe
	if err := h.db.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "recipe not found")
		}
		return err
	}

	var similar []models.Recipe
	query := h.db.Where("id != ?", recipe.ID).Limit(4)
	if recipe.CategoryID != nil {
		query = query.Where("category_id = ?", recipe.CategoryID)
	}
	if err := query.Find(&similar).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": similar})
}

// CreateRecipe persists a new recipe authored by the current user.
func (h *RecipeHandler) CreateRecipe(c *fiber.Ctx) error {
	var payload models.Recipe
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if payload.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}

	if userID, ok := middleware.GetCurrentUserID(c); ok {
		payload.AuthorID = &userID
	}

	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// UpdateRecipe updates an existing recipe.
func (h *RecipeHandler) UpdateRecipe(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var recipe models.Recipe
	if err := h.db.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "recipe not found")
		}
		return err
	}

	var payload models.Recipe
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = recipe.ID
	payload.AuthorID = recipe.AuthorID
	if err := h.db.Model(&recipe).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": recipe})
}

// DeleteRecipe removes a recipe by ID.
func (h *RecipeHandler) DeleteRecipe(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.Recipe{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ListRecipeCategories returns all recipe categories ordered by name.
func (h *RecipeHandler) ListRecipeCategories(c *fiber.Ctx) error {
	var categories []models.RecipeCategory
	if err := h.db.Order("name asc").Find(&categories).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": categories})
}

// CreateRecipeCategory persists a new recipe category.
func (h *RecipeHandler) CreateRecipeCategory(c *fiber.Ctx) error {
	var payload models.RecipeCategory
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.db.Create(&payload).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": payload})
}

// UpdateRecipeCategory updates an existing recipe category.
func (h *RecipeHandler) UpdateRecipeCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var category models.RecipeCategory
	if err := h.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "recipe category not found")
		}
		return err
	}

	var payload models.RecipeCategory
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	payload.ID = category.ID
	if err := h.db.Model(&category).Updates(payload).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": category})
}

// DeleteRecipeCategory removes a recipe category by ID.
func (h *RecipeHandler) DeleteRecipeCategory(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	if err := h.db.Delete(&models.RecipeCategory{}, "id = ?", id).Error; err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
