package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/voltvest/voltvest_backend/controllers"
	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/services"
	"github.com/voltvest/voltvest_backend/websocket"
)

// RegisterMarketRoutes sets up the market data proxy and the live tick feed.
// All of it sits behind auth so the upstream quota is not burned by anonymous
// traffic.
func RegisterMarketRoutes(e *echo.Echo, market *services.MarketService, hub *websocket.Hub) {
	marketController := controllers.NewMarketController(market, hub)

	r := e.Group("/api/market")
	r.Use(middleware.JWTMiddleware())

	r.GET("/quote", marketController.GetQuote)
	r.GET("/candles", marketController.GetCandles)
	r.GET("/news", marketController.GetNews)
	r.GET("/ws", marketController.LiveFeed)
}
