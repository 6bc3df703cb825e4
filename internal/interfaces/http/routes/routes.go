// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/sweetcrumbs/bakery-backend/internal/config"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/analytics"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/cart"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/checkout"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/order"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/payment"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/pricing"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/product"
	"github.com/sweetcrumbs/bakery-backend/internal/domain/user"
	"github.com/sweetcrumbs/bakery-backend/internal/interfaces/http/handlers"
	"github.com/sweetcrumbs/bakery-backend/internal/interfaces/http/middleware"
	"github.com/sweetcrumbs/bakery-backend/internal/pkg/email"
	"github.com/sweetcrumbs/bakery-backend/internal/pkg/pdf"
)

// SetupRoutes wires the domain services and registers every API route.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) {
	// Domain services.
	productService := product.NewService(db, cfg)
	categoryService := product.NewCategoryService(db, cfg)
	reviewService := product.NewReviewService(db, cfg)
	userService := user.NewService(db, cfg)
	addressService := user.NewAddressService(db, cfg)
	orderService := order.NewService(db, cfg)
	analyticsService := analytics.NewService(db)

	cartStore := cart.NewRedisStore(redisClient, 0)
	cartService := cart.NewService(cartStore, productService)

	pricingEngine := pricing.NewEngine(cfg)
	emailService := email.NewService(cfg, logger)
	pdfService := pdf.NewService(cfg)

	var gateway checkout.PaymentGateway
	if cfg.External.Razorpay.KeyID != "" {
		gateway = payment.NewRazorpayClient(cfg)
	}

	checkoutService := checkout.NewService(
		productService,
		orderService,
		cartService,
		addressService,
		pricingEngine,
		gateway,
		emailService,
		logger,
	)

	// Handlers.
	authHandler := handlers.NewAuthHandler(userService, cfg)
	productHandler := handlers.NewProductHandler(productService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	cartHandler := handlers.NewCartHandler(cartService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService, pdfService)
	addressHandler := handlers.NewAddressHandler(addressService)
	adminHandler := handlers.NewAdminHandler(analyticsService, userService)

	// Auth.
	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}

	// Catalog (public, optional auth for admin visibility rules).
	products := rg.Group("/products")
	products.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/:id", productHandler.GetProduct)
		products.GET("/slug/:slug", productHandler.GetProductBySlug)
		products.GET("/:id/reviews", reviewHandler.GetReviews)
	}

	reviews := rg.Group("/products/:id/reviews")
	reviews.Use(middleware.AuthMiddleware(cfg))
	{
		reviews.POST("", reviewHandler.CreateReview)
	}

	categories := rg.Group("/categories")
	categories.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/:id", categoryHandler.GetCategory)
	}

	// Cart works for guests via the session cookie.
	cartRoutes := rg.Group("/cart")
	cartRoutes.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		cartRoutes.GET("", cartHandler.GetCart)
		cartRoutes.POST("/items", cartHandler.AddToCart)
		cartRoutes.PUT("/items/:id", cartHandler.UpdateCartItem)
		cartRoutes.DELETE("/items/:id", cartHandler.RemoveCartItem)
		cartRoutes.DELETE("", cartHandler.ClearCart)
	}

	// Checkout requires a signed-in customer; the summary works for guests
	// browsing the checkout page.
	checkoutRoutes := rg.Group("/checkout")
	checkoutRoutes.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		checkoutRoutes.GET("/summary", checkoutHandler.GetSummary)
	}
	checkoutProtected := rg.Group("/checkout")
	checkoutProtected.Use(middleware.AuthMiddleware(cfg))
	{
		checkoutProtected.POST("", checkoutHandler.PlaceOrder)
		checkoutProtected.POST("/confirm", checkoutHandler.ConfirmPayment)
	}

	// Orders.
	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.ListOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.PUT("/:id/cancel", orderHandler.CancelOrder)
		orders.GET("/:id/invoice", orderHandler.GetInvoice)
	}

	// Saved addresses.
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	{
		users.GET("/addresses", addressHandler.ListAddresses)
		users.POST("/addresses", addressHandler.CreateAddress)
		users.DELETE("/addresses/:id", addressHandler.DeleteAddress)
	}

	// Admin.
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.AdminMiddleware())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.GET("/dashboard/revenue", adminHandler.GetRevenueSeries)
		admin.GET("/dashboard/top-products", adminHandler.GetTopProducts)

		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/toggle-admin", adminHandler.ToggleAdmin)

		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.PUT("/products/:id/stock", productHandler.SetStock)

		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.PUT("/categories/:id/toggle", categoryHandler.ToggleCategoryActive)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		admin.GET("/orders", orderHandler.AdminListOrders)
		admin.PUT("/orders/:id/status", orderHandler.AdminUpdateStatus)
	}
}
