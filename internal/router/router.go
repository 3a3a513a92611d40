// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stackpick/stackpick-backend/internal/comparison"
	"github.com/stackpick/stackpick-backend/internal/config"
	"github.com/stackpick/stackpick-backend/internal/handlers"
	"github.com/stackpick/stackpick-backend/internal/middleware"
	"github.com/stackpick/stackpick-backend/internal/services"
	"github.com/stackpick/stackpick-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, kv comparison.KeyValue) *gin.Engine {
	log := logrus.WithField("component", "api")

	// Initialize services
	authService := services.NewAuthService(db, cfg)
	metricService := services.NewMetricService(db)
	scoringService := services.NewScoringService(db, metricService, cfg.Scoring, log)
	catalogService := services.NewCatalogService(db, metricService, scoringService, log)
	reviewService := services.NewReviewService(db, scoringService, log)
	bookmarkService := services.NewBookmarkService(db)

	comparisonManager := comparison.NewManager(kv, log)
	comparisonAssembler := comparison.NewAssembler(handlers.NewCatalogFetcher(catalogService), log)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService, authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	bookmarkHandler := handlers.NewBookmarkHandler(bookmarkService)
	metricHandler := handlers.NewMetricHandler(metricService, catalogService)
	comparisonHandler := handlers.NewComparisonHandler(comparisonManager, comparisonAssembler, catalogService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/me", middleware.AuthRequired(), authHandler.UpdateProfile)
		}

		// Category and metric registry routes
		categories := v1.Group("/categories")
		{
			categories.GET("", metricHandler.GetCategories)
			categories.GET("/:category/metrics", metricHandler.GetCategoryMetrics)
		}

		// Product catalog routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/enriched", middleware.OptionalAuth(), productHandler.GetEnrichedProducts)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.GET("/:id/reviews", reviewHandler.GetReviews)

			products.POST("", middleware.AuthRequired(), middleware.SellerRequired(), productHandler.CreateProduct)
			products.PUT("/:id", middleware.AuthRequired(), middleware.SellerRequired(), productHandler.UpdateProduct)
			products.DELETE("/:id", middleware.AuthRequired(), middleware.SellerRequired(), productHandler.DeleteProduct)

			products.POST("/:id/features", middleware.AuthRequired(), middleware.SellerRequired(), productHandler.AddFeature)
			products.DELETE("/:id/features/:featureId", middleware.AuthRequired(), middleware.SellerRequired(), productHandler.DeleteFeature)
			products.PUT("/:id/metrics/:code", middleware.AuthRequired(), middleware.SellerRequired(), productHandler.SetMetricValue)

			products.POST("/:id/reviews", middleware.AuthRequired(), reviewHandler.CreateReview)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.DELETE("/:id", reviewHandler.DeleteReview)
		}

		// Bookmark routes
		bookmarks := v1.Group("/bookmarks")
		bookmarks.Use(middleware.AuthRequired())
		{
			bookmarks.GET("", bookmarkHandler.GetBookmarks)
			bookmarks.POST("/:productId", bookmarkHandler.AddBookmark)
			bookmarks.DELETE("/:productId", bookmarkHandler.RemoveBookmark)
		}

		// Comparison routes: anonymous sessions allowed via X-Session-ID
		comparisonRoutes := v1.Group("/comparison")
		comparisonRoutes.Use(middleware.OptionalAuth())
		{
			comparisonRoutes.GET("", comparisonHandler.GetComparison)
			comparisonRoutes.POST("/items", comparisonHandler.AddItem)
			comparisonRoutes.DELETE("/items/:productId", comparisonHandler.RemoveItem)
			comparisonRoutes.DELETE("/categories/:category", comparisonHandler.ClearCategory)
			comparisonRoutes.DELETE("", comparisonHandler.Clear)
			comparisonRoutes.PUT("/active-category", comparisonHandler.SetActiveCategory)
		}
	}

	return r
}
