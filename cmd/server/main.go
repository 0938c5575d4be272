// @title           Gold Lifestyle Storefront API
// @version         1.0.0
// @description     Backend API for the Gold Lifestyle storefront: product catalog with color variants, checkout through Flutterwave, and order settlement.

// @BasePath  /api

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a Supabase access token.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gold-lifestyle-backend/internal/config"
	"gold-lifestyle-backend/internal/database"
	"gold-lifestyle-backend/internal/events"
	"gold-lifestyle-backend/internal/flutterwave"
	"gold-lifestyle-backend/internal/handlers"
	"gold-lifestyle-backend/internal/logger"
	"gold-lifestyle-backend/internal/middleware"
	"gold-lifestyle-backend/internal/notify"
	"gold-lifestyle-backend/internal/services"
	"gold-lifestyle-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error").Fatal("Failed to load configuration: %v", err)
	}
	log := logger.New(cfg.LogLevel)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	migrator, err := database.NewMigrator(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to initialize migrator: %v", err)
	}
	if err := migrator.Run(ctx); err != nil {
		log.Fatal("Migration failed: %v", err)
	}
	migrator.Close()
	log.Info("Migrations completed successfully")

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to initialize database client: %v", err)
	}
	defer dbClient.Close()

	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseStorageBucket)
	if err != nil {
		log.Fatal("Failed to initialize storage client: %v", err)
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		log.Fatal("Failed to initialize Supabase client: %v", err)
	}

	var gateway services.PaymentGateway
	if cfg.PaymentsEnabled() {
		gateway = flutterwave.NewClient(cfg.FlutterwaveBaseURL, cfg.FlutterwaveSecretKey)
	} else {
		log.Warn("FLW_SECRET_KEY not set; checkout will not return payment links")
	}

	var notifier services.Notifier
	if cfg.MailEnabled() {
		notifier = notify.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.MailFrom, cfg.StoreOwnerEmail, log)
	} else {
		log.Warn("SendGrid not configured; paid orders will not be emailed")
	}

	var publisher services.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	variantService := services.NewVariantService(dbClient, storageClient, log)
	productService := services.NewProductService(dbClient, storageClient, variantService, publisher, log)
	orderService := services.NewOrderService(dbClient, gateway, notifier, publisher, log, services.OrderServiceConfig{
		Currency:        cfg.PaymentCurrency,
		MinPaymentCents: cfg.MinPaymentCents,
		ReferencePrefix: cfg.PaymentReferencePrefix,
		StorefrontURL:   cfg.StorefrontURL,
	})
	commentService := services.NewCommentService(supabaseClient, dbClient)

	productsHandler := handlers.NewProductsHandler(productService, log)
	ordersHandler := handlers.NewOrdersHandler(orderService, log)
	commentsHandler := handlers.NewCommentsHandler(commentService, log)

	router := gin.New()
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api")
	auth := middleware.AuthMiddleware(cfg)

	// Storefront (no auth)
	api.GET("/products", productsHandler.ListProducts)
	api.GET("/products/:id", productsHandler.GetProduct)
	api.GET("/products/:id/comments", commentsHandler.ListComments)
	api.POST("/products/:id/comments", commentsHandler.CreateComment)
	api.POST("/orders/checkout", ordersHandler.Checkout)
	api.GET("/orders/verify", ordersHandler.Verify)
	api.GET("/orders/:id", ordersHandler.Confirmation)

	// Admin
	api.POST("/products", auth, productsHandler.CreateProduct)
	api.PUT("/products/:id", auth, productsHandler.UpdateProduct)
	api.DELETE("/products/:id", auth, productsHandler.DeleteProduct)

	store := api.Group("/store")
	store.Use(auth)
	store.GET("/orders", ordersHandler.ListOrders)
	store.GET("/orders/:id", ordersHandler.GetOrder)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting on port %s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}
}
