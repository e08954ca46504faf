package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltvest/voltvest_backend/controllers"
	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/services"
)

// RegisterAuthRoutes sets up registration, login and password recovery.
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Database, redisClient *redis.Client, mailer *services.Mailer) {
	authController := controllers.NewAuthController(db, redisClient, mailer)

	auth := e.Group("/api/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.POST("/forgot-password", authController.ForgotPassword)
	auth.POST("/reset-password", authController.ResetPassword)

	protected := e.Group("/api/auth")
	protected.Use(middleware.JWTMiddleware())
	protected.POST("/logout", authController.Logout)
}
