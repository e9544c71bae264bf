package handlers_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/mealmart/internal/models"
)

func TestCatalogWritesRequireStaff(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	resp := doJSON(t, app, fiber.MethodPost, "/api/products/", fiber.Map{
		"name":  "Anonymous Oil",
		"price": 1.0,
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	shopper := seedUser(t, db, "shopper@example.com", "supersecret", true, false)
	resp = doJSON(t, app, fiber.MethodPost, "/api/products/", fiber.Map{
		"name":  "Shopper Oil",
		"price": 1.0,
	}, tokenFor(t, shopper.ID))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	product := seedProduct(t, db, "Locked Stock", 5.0, 7)
	resp = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/products/%s", product.ID), fiber.Map{
		"stock": 9999,
	}, tokenFor(t, shopper.ID))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, "id = ?", product.ID).Error)
	assert.Equal(t, 7, fresh.Stock)

	resp = doJSON(t, app, fiber.MethodPost, "/api/categories/", fiber.Map{
		"name": "Rogue",
		"slug": "rogue",
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Reads stay public.
	resp = doJSON(t, app, fiber.MethodGet, "/api/products/", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProductCRUD(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	staff := seedUser(t, db, "staff@example.com", "supersecret", true, true)
	token := tokenFor(t, staff.ID)

	category := models.Category{Name: "Pantry", Slug: "pantry"}
	require.NoError(t, db.Create(&category).Error)

	resp := doJSON(t, app, fiber.MethodPost, "/api/products/", fiber.Map{
		"name":        "Sesame Oil",
		"description": "Toasted",
		"price":       7.80,
		"stock":       12,
		"category_id": category.ID,
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var product models.Product
	require.NoError(t, db.Where("name = ?", "Sesame Oil").First(&product).Error)
	require.NotNil(t, product.CategoryID)
	assert.Equal(t, category.ID, *product.CategoryID)

	resp = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/products/%s", product.ID), nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Sesame Oil", data["name"])

	resp = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/products/%s", product.ID), fiber.Map{
		"price": 8.20,
	}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, "id = ?", product.ID).Error)
	assert.InDelta(t, 8.20, fresh.Price, 0.001)

	resp = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/products/%s", product.ID), nil, token)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, fiber.MethodGet, fmt.Sprintf("/api/products/%s", product.ID), nil, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateProductValidation(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	staff := seedUser(t, db, "staff@example.com", "supersecret", true, true)
	resp := doJSON(t, app, fiber.MethodPost, "/api/products/", fiber.Map{
		"name":  "Free Stuff",
		"price": 0,
	}, tokenFor(t, staff.ID))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestListProductsPagination(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	for i := 0; i < 5; i++ {
		seedProduct(t, db, fmt.Sprintf("Item %d", i), 1.0, 1)
	}

	resp := doJSON(t, app, fiber.MethodGet, "/api/products/?page=1&limit=2", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)

	pagination, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 5, pagination["total_items"])
	assert.EqualValues(t, 2, pagination["items_per_page"])
}

func TestListProductsSearch(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	seedProduct(t, db, "Sesame Oil", 7.80, 3)
	seedProduct(t, db, "Olive Oil", 9.99, 3)
	seedProduct(t, db, "Basmati Rice", 12.00, 3)

	resp := doJSON(t, app, fiber.MethodGet, "/api/products/?search=OIL", nil, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 2)

	pagination, ok := body["pagination"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, pagination["total_items"])
}

func TestCategoryCRUD(t *testing.T) {
	app, db, _, _ := newTestApp(t)

	staff := seedUser(t, db, "staff@example.com", "supersecret", true, true)
	token := tokenFor(t, staff.ID)

	resp := doJSON(t, app, fiber.MethodPost, "/api/categories/", fiber.Map{
		"name": "Produce",
		"slug": "produce",
	}, token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var category models.Category
	require.NoError(t, db.Where("slug = ?", "produce").First(&category).Error)

	resp = doJSON(t, app, fiber.MethodPut, fmt.Sprintf("/api/categories/%s", category.ID), fiber.Map{
		"name": "Fresh Produce",
	}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var fresh models.Category
	require.NoError(t, db.First(&fresh, "id = ?", category.ID).Error)
	assert.Equal(t, "Fresh Produce", fresh.Name)

	resp = doJSON(t, app, fiber.MethodDelete, fmt.Sprintf("/api/categories/%s", category.ID), nil, token)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
