// controllers/market_controller.go
package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voltvest/voltvest_backend/middleware"
	"github.com/voltvest/voltvest_backend/models"
	"github.com/voltvest/voltvest_backend/services"
	"github.com/voltvest/voltvest_backend/websocket"
)

// MarketController exposes the server-side market data proxy and the live
// tick feed websocket.
type MarketController struct {
	Market *services.MarketService
	Hub    *websocket.Hub
}

func NewMarketController(market *services.MarketService, hub *websocket.Hub) *MarketController {
	return &MarketController{Market: market, Hub: hub}
}

// GetQuote proxies GET /quote?symbol=TSLA upstream. The upstream body is
// passed through untouched so the frontend sees the provider's schema.
func (mc *MarketController) GetQuote(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	symbol := strings.ToUpper(strings.TrimSpace(c.QueryParam("symbol")))
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "symbol is required",
		})
	}

	body, err := mc.Market.Quote(ctx, symbol)
	if err != nil {
		log.Printf("Quote fetch failed for %s: %v", symbol, err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Market data is temporarily unavailable",
		})
	}

	return c.JSONBlob(http.StatusOK, body)
}

// GetCandles proxies OHLCV history. from/to are unix seconds; when omitted
// the last 30 days at daily resolution are returned.
func (mc *MarketController) GetCandles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	symbol := strings.ToUpper(strings.TrimSpace(c.QueryParam("symbol")))
	if symbol == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "symbol is required",
		})
	}

	resolution := c.QueryParam("resolution")
	if resolution == "" {
		resolution = "D"
	}

	now := time.Now()
	from := now.AddDate(0, 0, -30).Unix()
	to := now.Unix()
	if v := c.QueryParam("from"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "from must be a unix timestamp",
			})
		}
		from = parsed
	}
	if v := c.QueryParam("to"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "to must be a unix timestamp",
			})
		}
		to = parsed
	}
	if from >= to {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "from must be before to",
		})
	}

	body, err := mc.Market.Candles(ctx, symbol, resolution, from, to)
	if err != nil {
		log.Printf("Candle fetch failed for %s: %v", symbol, err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Market data is temporarily unavailable",
		})
	}

	return c.JSONBlob(http.StatusOK, body)
}

// GetNews proxies market news.
func (mc *MarketController) GetNews(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	body, err := mc.Market.News(ctx, c.QueryParam("category"))
	if err != nil {
		log.Printf("News fetch failed: %v", err)
		return c.JSON(http.StatusBadGateway, models.Response{
			Status:  http.StatusBadGateway,
			Message: "Market data is temporarily unavailable",
		})
	}

	return c.JSONBlob(http.StatusOK, body)
}

// LiveFeed upgrades the connection and subscribes it to the tick feed.
func (mc *MarketController) LiveFeed(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	userID, err := objectIDFromClaims(claims)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}
	return websocket.HandleWebSocket(c, mc.Hub, userID)
}
