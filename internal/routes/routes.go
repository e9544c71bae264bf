package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/mealmart/internal/config"
	"github.com/example/mealmart/internal/handlers"
	"github.com/example/mealmart/internal/middleware"
	"github.com/example/mealmart/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config, mailer services.Mailer, verifier services.GoogleVerifier) {
	orderService := services.NewOrderService(db)

	authHandler := handlers.NewAuthHandler(db, cfg, mailer, verifier)
	resetHandler := handlers.NewPasswordResetHandler(db, cfg, mailer)
	profileHandler := handlers.NewProfileHandler(db)
	productHandler := handlers.NewProductHandler(db)
	recipeHandler := handlers.NewRecipeHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db)
	adminHandler := handlers.NewAdminHandler(db, orderService)

	api := app.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/verify-otp", authHandler.VerifyOTP)
	auth.Post("/login", authHandler.Login)
	auth.Post("/google-login", authHandler.GoogleLogin)
	auth.Post("/forgot-password", resetHandler.ForgotPassword)
	auth.Post("/reset-password", resetHandler.ResetPassword)

	// Catalog reads are public; writes are staff-only so nobody can edit
	// prices or stock from outside.
	requireStaff := middleware.RequireStaff(db)

	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Post("/", middleware.AuthMiddleware(cfg), requireStaff, productHandler.CreateProduct)
	products.Get("/:id", productHandler.GetProduct)
	products.Put("/:id", middleware.AuthMiddleware(cfg), requireStaff, productHandler.UpdateProduct)
	products.Delete("/:id", middleware.AuthMiddleware(cfg), requireStaff, productHandler.DeleteProduct)

	categories := api.Group("/categories")
	categories.Get("/", productHandler.ListCategories)
	categories.Post("/", middleware.AuthMiddleware(cfg), requireStaff, productHandler.CreateCategory)
	categories.Get("/:id", productHandler.GetCategory)
	categories.Put("/:id", middleware.AuthMiddleware(cfg), requireStaff, productHandler.UpdateCategory)
	categories.Delete("/:id", middleware.AuthMiddleware(cfg), requireStaff, productHandler.DeleteCategory)

	// Recipes are publicly readable; writes require authentication.
	recipes := api.Group("/recipes")
	recipes.Get("/", recipeHandler.ListRecipes)
	recipes.Get("/:id", recipeHandler.GetRecipe)
	recipes.Get("/:id/similar", recipeHandler.SimilarRecipes)
	recipes.Post("/", middleware.AuthMiddleware(cfg), recipeHandler.CreateRecipe)
	recipes.Put("/:id", middleware.AuthMiddleware(cfg), recipeHandler.UpdateRecipe)
	recipes.Delete("/:id", middleware.AuthMiddleware(cfg), recipeHandler.DeleteRecipe)

	recipeCategories := api.Group("/recipe-categories")
	recipeCategories.Get("/", recipeHandler.ListRecipeCategories)
	recipeCategories.Post("/", middleware.AuthMiddleware(cfg), recipeHandler.CreateRecipeCategory)
	recipeCategories.Put("/:id", middleware.AuthMiddleware(cfg), recipeHandler.UpdateRecipeCategory)
	recipeCategories.Delete("/:id", middleware.AuthMiddleware(cfg), recipeHandler.DeleteRecipeCategory)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(cfg))

	protected.Get("/me", profileHandler.GetProfile)
	protected.Patch("/me", profileHandler.UpdateProfile)

	protected.Get("/cart", cartHandler.GetCart)
	protected.Post("/cart/items", cartHandler.AddItem)
	protected.Put("/cart/items/:id", cartHandler.UpdateItem)
	protected.Delete("/cart/items/:id", cartHandler.RemoveItem)
	protected.Post("/cart/apply-coupon", cartHandler.ApplyCoupon)

	protected.Get("/orders", orderHandler.ListOrders)
	protected.Get("/orders/:id", orderHandler.GetOrder)

	// Admin routes
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg), middleware.RequireStaff(db))
	admin.Get("/stats", adminHandler.DashboardStats)
	admin.Get("/products", productHandler.ListProducts)
	admin.Post("/products", productHandler.CreateProduct)
	admin.Get("/categories", productHandler.ListCategories)
	admin.Get("/orders", adminHandler.ListAllOrders)
	admin.Post("/orders/create", adminHandler.CreateOrder)
	admin.Get("/payments", adminHandler.ListPayments)
	admin.Get("/users", adminHandler.SearchUsers)
	admin.Get("/coupons", adminHandler.ListCoupons)
	admin.Post("/coupons", adminHandler.CreateCoupon)
}
