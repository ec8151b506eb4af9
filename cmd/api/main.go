package main

import (
	"log"

	_ "mealportal/api/swagger" // swagger docs
	"mealportal/internal/config"
	"mealportal/internal/database"
	"mealportal/internal/handler"
	"mealportal/internal/middleware"
	"mealportal/internal/repository"
	"mealportal/internal/s3"
	"mealportal/internal/service"
	"mealportal/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Facility Services Meal Portal API
// @version         1.0
// @description     Meal ordering and approval workflow API for facility services.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg, err := config.Load("configs")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Resolve the JWT secret once; signing and verification must agree.
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = string(middleware.GetJWTSecret())
	}
	middleware.ConfigureJWTSecret(cfg.JWT.Secret)

	db, err := database.NewConnection(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Delivery proof storage: S3 when configured, database bytea otherwise.
	var photoStore service.PhotoStore
	if cfg.S3.Bucket != "" {
		uploader, upErr := s3.NewUploader(cfg.S3)
		if upErr != nil {
			log.Fatalf("Failed to initialize S3 uploader: %v", upErr)
		}
		photoStore = uploader
	}

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	requestRepo := repository.NewRequestRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	menuRepo := repository.NewMenuRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	proofRepo := repository.NewProofRepository(db)
	draftRepo := repository.NewDraftRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	notifier := service.NewNotifier(wsHub, cfg.Notify.WebhookURL)
	tokenRegistry := service.NewTokenRegistry(tokenRepo, cfg.Approval.BaseURL)
	deliveryService := service.NewDeliveryService(proofRepo, photoStore)
	composerService := service.NewComposerService(draftRepo)
	requestService := service.NewRequestService(
		txManager, requestRepo, tokenRegistry, menuRepo, directoryRepo,
		deliveryService, auditRepo, notifier, cfg.Approval.TokenTTL,
	)
	menuService := service.NewMenuService(menuRepo, auditRepo)
	directoryService := service.NewDirectoryService(directoryRepo)
	userService := service.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(db)

	// Initialize Handlers
	requestHandler := handler.NewRequestHandler(requestService)
	composerHandler := handler.NewComposerHandler(composerService, requestService)
	menuHandler := handler.NewMenuHandler(menuService)
	directoryHandler := handler.NewDirectoryHandler(directoryService)
	userHandler := handler.NewUserHandler(userService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint for the monitoring dashboard
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	requestHandler.RegisterRoutes(router.Group(""))
	composerHandler.RegisterRoutes(router.Group(""))
	menuHandler.RegisterRoutes(router.Group(""))
	directoryHandler.RegisterRoutes(router.Group(""))
	userHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
