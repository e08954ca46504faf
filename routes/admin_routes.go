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

// RegisterAdminRoutes sets up the back office. Everything except login sits
// behind JWT auth plus the admin role gate.
func RegisterAdminRoutes(e *echo.Echo, db *mongo.Database, repo *repositories.WalletRepository, mailer *services.Mailer, hub *websocket.Hub) {
	adminController := controllers.NewAdminController(db, repo)
	walletController := controllers.NewWalletController(db, repo, mailer, hub)
	adminInvestmentController := controllers.NewAdminInvestmentController(db, repo, mailer)
	kycController := controllers.NewKYCController(db, nil, mailer)
	carController := controllers.NewCarController(db)
	orderController := controllers.NewOrderController(db)
	slideController := controllers.NewSlideController(db)
	settingsController := controllers.NewSettingsController(db)

	e.POST("/api/admin/login", adminController.Login)

	r := e.Group("/api/admin")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType("admin"))

	// Admin accounts and user management
	r.POST("/register", adminController.RegisterAdmin)
	r.GET("/users", adminController.GetAllUsers)
	r.GET("/users/:id", adminController.GetUser)
	r.PUT("/users/:id/status", adminController.SetUserStatus)
	r.PUT("/users/:id/finances", adminController.FinancialOverride)

	// Ledger approvals
	r.GET("/transactions", walletController.ListTransactions)
	r.PUT("/transactions/:id", walletController.ProcessTransaction)

	// Investment approvals and plans
	r.GET("/investments", adminInvestmentController.ListInvestments)
	r.PUT("/investments/:id/approve", adminInvestmentController.ApproveInvestment)
	r.PUT("/investments/:id/decline", adminInvestmentController.DeclineInvestment)
	r.PUT("/investments/:id/returns", adminInvestmentController.AdjustReturns)
	r.POST("/plans", adminInvestmentController.CreatePlan)
	r.GET("/plans", adminInvestmentController.GetAllPlans)
	r.PUT("/plans/:id", adminInvestmentController.UpdatePlan)
	r.DELETE("/plans/:id", adminInvestmentController.DeletePlan)

	// KYC review
	r.GET("/kyc/pending", kycController.ListPendingKYC)
	r.PUT("/kyc/:id", kycController.ReviewKYC)

	// Storefront management
	r.POST("/cars", carController.CreateCar)
	r.PUT("/cars/:id", carController.UpdateCar)
	r.DELETE("/cars/:id", carController.DeleteCar)
	r.GET("/orders", orderController.ListOrders)
	r.PUT("/orders/:id/status", orderController.UpdateOrderStatus)
	r.GET("/slides", slideController.ListSlides)
	r.POST("/slides", slideController.CreateSlide)
	r.PUT("/slides/:id", slideController.UpdateSlide)
	r.DELETE("/slides/:id", slideController.DeleteSlide)

	// Platform settings and audit trail
	r.GET("/settings", settingsController.GetSettings)
	r.PUT("/settings", settingsController.UpdateSettings)
	r.GET("/audit-logs", adminController.GetAuditLogs)
}
