package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name     string    `gorm:"uniqueIndex" json:"name"`
	Slug     string    `gorm:"uniqueIndex" json:"slug"`
	Products []Product `json:"products,omitempty"`
}

type Product struct {
	BaseModel
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Stock       int            `json:"stock"`
	CategoryID  *uuid.UUID     `gorm:"type:uuid" json:"category_id"`
	Category    *Category      `json:"category,omitempty"`
	Images      []ProductImage `json:"images,omitempty"`
}

type ProductImage struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	URL       string    `json:"url"`
	AltText   string    `json:"alt_text"`
}
