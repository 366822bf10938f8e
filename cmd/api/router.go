package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"biblioconnect-backend/internal/shared/middleware"
	"biblioconnect-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupBookRoutes(v1, c)
		setupRentalRoutes(v1, c)
		setupReviewRoutes(v1, c)
		setupNotificationRoutes(v1, c)
		setupWebhookRoutes(v1, c)
	}

	return router
}

// ========================================
// BOOK ROUTES
// ========================================
func setupBookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	books := v1.Group("/books")
	{
		books.GET("", c.BookHandler.ListBooks)
		books.GET("/:book_id", c.BookHandler.GetBook)
		books.GET("/:book_id/reviews", c.ReviewHandler.ListByBook)

		// admin seeding
		books.POST("", c.BookHandler.CreateBook)
		books.PUT("/:book_id/cover", c.BookHandler.UploadCover)
	}
}

// ========================================
// RENTAL ROUTES
// ========================================
func setupRentalRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.JWTManager)

	v1.POST("/borrow/:book_id", auth, c.RentalHandler.Borrow)
	v1.POST("/return/:rental_id", auth, c.RentalHandler.Return)
	v1.GET("/book/status/:book_id", auth, c.RentalHandler.BorrowStatus)
	v1.GET("/borrows", auth, c.RentalHandler.ListBorrows)
	v1.GET("/borrows/:rental_id", auth, c.RentalHandler.GetBorrow)
	v1.GET("/invoices/:rental_id", auth, c.RentalHandler.GetInvoice)
}

// ========================================
// REVIEW ROUTES
// ========================================
func setupReviewRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.JWTManager)

	v1.POST("/books/:book_id/reviews", auth, c.ReviewHandler.Submit)
	v1.GET("/reviews/can_add/:book_id", auth, c.ReviewHandler.CanAdd)
}

// ========================================
// NOTIFICATION ROUTES
// ========================================
func setupNotificationRoutes(v1 *gin.RouterGroup, c *container.Container) {
	auth := middleware.AuthMiddleware(c.JWTManager)

	v1.GET("/users/me/notifications", auth, c.NotificationHandler.List)
}

// ========================================
// WEBHOOK ROUTES
// ========================================
// Unauthenticated; the HMAC signature on the body is the credential.
func setupWebhookRoutes(v1 *gin.RouterGroup, c *container.Container) {
	v1.POST("/webhooks/payment", c.RentalHandler.PaymentWebhook)
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		dbStatus := "ok"
		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "ok"
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			cacheStatus = "down"
		}

		status := http.StatusOK
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}

		ctx.JSON(status, gin.H{
			"name":     c.Config.App.Name,
			"version":  c.Config.App.Version,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}
