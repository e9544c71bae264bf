package models

import "github.com/google/uuid"

// RecipeCategory is kept separate from the product Category on purpose:
// recipes and catalog products are classified independently.
type RecipeCategory struct {
	BaseModel
	Name        string   `gorm:"uniqueIndex" json:"name"`
	Slug        string   `gorm:"uniqueIndex" json:"slug"`
	Description string   `json:"description"`
	Recipes     []Recipe `gorm:"foreignKey:CategoryID" json:"recipes,omitempty"`
}

type Recipe struct {
	BaseModel
	Title        string          `json:"title"`
	Image        string          `json:"image"`
	Description  string          `json:"description"`
	Ingredients  string          `json:"ingredients"`
	Instructions string          `json:"instructions"`
	Review       string          `json:"review"`
	PrepTime     string          `json:"prep_time"`
	CookTime     string          `json:"cook_time"`
	Servings     int             `json:"servings"`
	Tags         string          `json:"tags"` // comma-separated labels, matched by substring
	CategoryID   *uuid.UUID      `gorm:"type:uuid" json:"category_id"`
	Category     *RecipeCategory `json:"category,omitempty"`
	AuthorID     *uuid.UUID      `gorm:"type:uuid" json:"author_id"`
	Author       *User           `json:"author,omitempty"`
}
