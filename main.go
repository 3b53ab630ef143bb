package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/flamepup2002/nuttracker-sub002/db"
	"github.com/flamepup2002/nuttracker-sub002/handlers"
	"github.com/flamepup2002/nuttracker-sub002/kafka"
	"github.com/flamepup2002/nuttracker-sub002/logger"
	"github.com/flamepup2002/nuttracker-sub002/middleware"
	"github.com/flamepup2002/nuttracker-sub002/mongodb"
	"github.com/flamepup2002/nuttracker-sub002/payments"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	development := os.Getenv("GIN_MODE") != "release"
	if err := logger.Init(development, logger.LogLevel(os.Getenv("LOG_LEVEL"))); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize Stripe client
	handlers.Payments = payments.New(os.Getenv("STRIPE_SECRET_KEY"))
}

func main() {
	defer logger.Sync()

	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"}) // Only trust local proxies

	router.Use(middleware.CorsMiddleware)

	// Initialize storage and messaging
	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	if err := mongodb.InitMongoDB(); err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer mongodb.CloseMongoDB()

	// Notifications are best-effort; the API still serves without a broker.
	if err := kafka.InitProducer(); err != nil {
		log.Printf("Warning: Kafka producer unavailable, notifications disabled: %v", err)
	}
	defer kafka.CloseProducer()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Stripe webhook (signature-verified, no user auth)
	router.POST("/webhook/stripe", middleware.StripeWebhookVerifier, handlers.HandleStripeWebhook)

	// API routes
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware)
	{
		// Economy routes
		api.POST("/economy/daily-bonus", handlers.HandleClaimDailyBonus)
		api.POST("/economy/convert", handlers.HandleConvertCoins)
		api.GET("/economy/balance", handlers.HandleGetBalance)

		// Stripe routes
		api.POST("/stripe/setup-intent", handlers.HandleCreateSetupIntent)
		api.POST("/stripe/payment-method", handlers.HandleGetPaymentMethod)
		api.POST("/stripe/payment-method/detach", handlers.HandleRemovePaymentMethod)
		api.POST("/stripe/subscription/cancel", handlers.HandleCancelSubscription)

		// Findom session routes
		api.POST("/sessions/start", handlers.HandleStartFindomSession)
		api.GET("/sessions/:id", handlers.HandleGetSession)
		api.GET("/findom/settings", handlers.HandleGetFindomSettings)
		api.PUT("/findom/settings", handlers.HandleUpdateFindomSettings)
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
