// services/market_service.go
package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache TTLs per endpoint; quotes go stale fast, news does not.
const (
	quoteCacheTTL   = 15 * time.Second
	candleCacheTTL  = 5 * time.Minute
	newsCacheTTL    = 10 * time.Minute
	upstreamTimeout = 15 * time.Second
)

// MarketService proxies the third-party quote API server-side so the API key
// never reaches the browser. Responses are cached in Redis; when Redis is
// down every request goes upstream.
type MarketService struct {
	baseURL string
	apiKey  string
	client  *http.Client
	cache   *redis.Client
}

// NewMarketService reads MARKET_API_* configuration from the environment.
func NewMarketService(cache *redis.Client) *MarketService {
	baseURL := os.Getenv("MARKET_API_BASE_URL")
	if baseURL == "" {
		baseURL = "https://finnhub.io/api/v1"
	}

	apiKey := os.Getenv("MARKET_API_KEY")
	if apiKey == "" {
		log.Printf("WARNING: MARKET_API_KEY is missing, market endpoints will fail upstream")
	}

	return &MarketService{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: upstreamTimeout},
		cache:   cache,
	}
}

// Quote fetches a realtime quote for a symbol.
func (s *MarketService) Quote(ctx context.Context, symbol string) ([]byte, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	return s.fetch(ctx, "/quote", params, quoteCacheTTL)
}

// Candles fetches OHLCV history.
func (s *MarketService) Candles(ctx context.Context, symbol, resolution string, from, to int64) ([]byte, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("resolution", resolution)
	params.Set("from", fmt.Sprintf("%d", from))
	params.Set("to", fmt.Sprintf("%d", to))
	return s.fetch(ctx, "/stock/candle", params, candleCacheTTL)
}

// News fetches market news for a category.
func (s *MarketService) News(ctx context.Context, category string) ([]byte, error) {
	if category == "" {
		category = "general"
	}
	params := url.Values{}
	params.Set("category", category)
	return s.fetch(ctx, "/news", params, newsCacheTTL)
}

// CacheKey builds the Redis key for an endpoint + query combination. The
// token parameter is added after key construction so keys never embed the
// API key.
func CacheKey(endpoint string, params url.Values) string {
	return "market:" + endpoint + "?" + params.Encode()
}

func (s *MarketService) fetch(ctx context.Context, endpoint string, params url.Values, ttl time.Duration) ([]byte, error) {
	cacheKey := CacheKey(endpoint, params)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			return cached, nil
		}
		if err != redis.Nil {
			log.Printf("Market cache read failed: %v", err)
		}
	}

	params.Set("token", s.apiKey)
	reqURL := s.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach market data provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market data provider returned status %d", resp.StatusCode)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, body, ttl).Err(); err != nil {
			log.Printf("Market cache write failed: %v", err)
		}
	}

	return body, nil
}
