package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltvest/voltvest_backend/controllers"
	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/repositories"
	"github.com/voltvest/voltvest_backend/services"
	"github.com/voltvest/voltvest_backend/websocket"
)

// RegisterUserRoutes sets up all authenticated user routes: profile, wallet,
// investments, KYC and orders.
func RegisterUserRoutes(e *echo.Echo, db *mongo.Database, repo *repositories.WalletRepository, mailer *services.Mailer, storage *services.StorageService, hub *websocket.Hub) {
	userController := controllers.NewUserController(db)
	walletController := controllers.NewWalletController(db, repo, mailer, hub)
	investmentController := controllers.NewInvestmentController(db, repo)
	kycController := controllers.NewKYCController(db, storage, mailer)
	orderController := controllers.NewOrderController(db)

	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())

	// Profile
	r.GET("/users/profile", userController.GetProfile)
	r.PUT("/users/profile", userController.UpdateProfile)
	r.POST("/users/change-password", userController.ChangePassword)

	// Wallet and ledger
	r.GET("/wallet", walletController.GetWallet)
	r.POST("/wallet/transactions", walletController.CreateTransaction)
	r.GET("/wallet/transactions", walletController.GetTransactions)

	// Investments
	r.GET("/plans", investmentController.GetPlans)
	r.POST("/investments", investmentController.CreateInvestment)
	r.GET("/investments", investmentController.GetInvestments)
	r.POST("/investments/:id/liquidate", investmentController.LiquidateInvestment)

	// KYC
	r.GET("/kyc", kycController.GetKYC)
	r.POST("/kyc/documents", kycController.UploadDocument)

	// Car orders
	r.POST("/orders", orderController.CreateOrder)
	r.GET("/orders", orderController.GetOrders)
}
