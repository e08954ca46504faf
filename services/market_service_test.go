package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteProxiesUpstream(t *testing.T) {
	var gotPath string
	var gotQuery url.Values

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"c":242.5,"h":245.1,"l":240.0,"o":241.2}`))
	}))
	defer upstream.Close()

	t.Setenv("MARKET_API_BASE_URL", upstream.URL)
	t.Setenv("MARKET_API_KEY", "sekrit")

	svc := NewMarketService(nil)
	body, err := svc.Quote(context.Background(), "TSLA")
	require.NoError(t, err)

	assert.JSONEq(t, `{"c":242.5,"h":245.1,"l":240.0,"o":241.2}`, string(body))
	assert.Equal(t, "/quote", gotPath)
	assert.Equal(t, "TSLA", gotQuery.Get("symbol"))
	assert.Equal(t, "sekrit", gotQuery.Get("token"), "the API key travels server-side only")
}

func TestQuoteUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	t.Setenv("MARKET_API_BASE_URL", upstream.URL)
	t.Setenv("MARKET_API_KEY", "sekrit")

	svc := NewMarketService(nil)
	_, err := svc.Quote(context.Background(), "TSLA")
	assert.Error(t, err)
}

func TestCandlesPassesRange(t *testing.T) {
	var gotQuery url.Values

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"s":"ok"}`))
	}))
	defer upstream.Close()

	t.Setenv("MARKET_API_BASE_URL", upstream.URL)
	t.Setenv("MARKET_API_KEY", "sekrit")

	svc := NewMarketService(nil)
	_, err := svc.Candles(context.Background(), "NIO", "D", 1700000000, 1700086400)
	require.NoError(t, err)

	assert.Equal(t, "NIO", gotQuery.Get("symbol"))
	assert.Equal(t, "D", gotQuery.Get("resolution"))
	assert.Equal(t, "1700000000", gotQuery.Get("from"))
	assert.Equal(t, "1700086400", gotQuery.Get("to"))
}

func TestCacheKeyExcludesToken(t *testing.T) {
	params := url.Values{}
	params.Set("symbol", "TSLA")

	key := CacheKey("/quote", params)

	assert.Equal(t, "market:/quote?symbol=TSLA", key)
	assert.NotContains(t, key, "token")
}
