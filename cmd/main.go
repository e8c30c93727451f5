package main

import (
	"catalog-service/internal/handler"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/repository"
	"catalog-service/internal/validation"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/jwtutil"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load .env file; missing file is fine, env vars may be set externally
	_ = godotenv.Load()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting catalog-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize JWT utility
	jwtutil.Initialize(&appConfig.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	db := database.GetDB()
	users := repository.NewUserRepository(db)
	books := repository.NewBookRepository(db)
	authors := repository.NewAuthorRepository(db)
	publishers := repository.NewPublisherRepository(db)
	genres := repository.NewGenreRepository(db)

	authHandler := handler.NewAuthHandler(users)
	bookHandler := handler.NewBookHandler(books, authors, publishers, genres, appConfig.Upload)
	authorHandler := handler.NewAuthorHandler(authors, books)
	publisherHandler := handler.NewPublisherHandler(publishers, books)
	genreHandler := handler.NewGenreHandler(genres, books)

	// Initialize Echo instance
	e := echo.New()
	e.Validator = validation.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(mid.MetricsMiddleware)

	// Metrics and health endpoints
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/health", handler.HealthCheck)

	// Uploaded cover images are served statically
	e.Static("/uploads", appConfig.Upload.Dir)

	// Auth routes
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/profile", authHandler.GetProfile, mid.AuthMiddleware)

	// Catalog API routes require a valid JWT
	api := e.Group("/api", mid.AuthMiddleware)

	bookAPI := api.Group("/books")
	bookAPI.GET("", bookHandler.List)
	bookAPI.GET("/export/csv", bookHandler.ExportCSV)
	bookAPI.POST("", bookHandler.Create)
	bookAPI.POST("/upload-image/:id", bookHandler.UploadImage)
	bookAPI.GET("/:id", bookHandler.Get)
	bookAPI.PATCH("/:id", bookHandler.Update)
	bookAPI.DELETE("/:id", bookHandler.Delete)

	authorAPI := api.Group("/authors")
	authorAPI.GET("", authorHandler.List)
	authorAPI.GET("/export/csv", authorHandler.ExportCSV)
	authorAPI.POST("", authorHandler.Create)
	authorAPI.GET("/:id", authorHandler.Get)
	authorAPI.PUT("/:id", authorHandler.Update)
	authorAPI.DELETE("/:id", authorHandler.Delete)

	publisherAPI := api.Group("/publishers")
	publisherAPI.GET("", publisherHandler.List)
	publisherAPI.GET("/export/csv", publisherHandler.ExportCSV)
	publisherAPI.POST("", publisherHandler.Create)
	publisherAPI.GET("/:id", publisherHandler.Get)
	publisherAPI.PUT("/:id", publisherHandler.Update)
	publisherAPI.DELETE("/:id", publisherHandler.Delete)

	genreAPI := api.Group("/genres")
	genreAPI.GET("", genreHandler.List)
	genreAPI.GET("/export/csv", genreHandler.ExportCSV)
	genreAPI.POST("", genreHandler.Create)
	genreAPI.GET("/:id", genreHandler.Get)
	genreAPI.PUT("/:id", genreHandler.Update)
	genreAPI.DELETE("/:id", genreHandler.Delete)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
