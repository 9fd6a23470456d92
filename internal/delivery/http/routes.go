package http

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jumo/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log zerolog.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestLogger(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware([]byte(cfg.Auth.JWTSecret)))
	{
		// Provider food endpoints
		foods := v1.Group("/foods")
		{
			foods.GET("", handler.SearchFoods)
			foods.GET("/barcode/:barcode", handler.GetFoodByBarcode)
		}

		// AI estimation endpoints
		ai := v1.Group("/ai")
		{
			ai.POST("/photo", handler.UploadPhoto)
			ai.POST("/chat", handler.Chat)
		}

		// Meal and item endpoints
		meals := v1.Group("/meals")
		{
			meals.POST("", handler.CreateMeal)
			meals.GET("", handler.ListMeals)
			meals.GET("/:mealId", handler.GetMeal)
			meals.PATCH("/:mealId", handler.UpdateMeal)
			meals.DELETE("/:mealId", handler.DeleteMeal)
			meals.GET("/:mealId/image", handler.GetMealImage)
			meals.POST("/:mealId/items", handler.CreateMealItem)
			meals.PATCH("/:mealId/items/:itemId", handler.UpdateMealItem)
			meals.DELETE("/:mealId/items/:itemId", handler.DeleteMealItem)
		}

		// Daily aggregation endpoint
		v1.GET("/days", handler.ListDays)
	}

	return router
}
