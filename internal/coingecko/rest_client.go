package coingecko

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"crypto-dashboard-go/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const vsCurrency = "usd"

// defaultSymbolIDs maps portfolio tickers to CoinGecko coin ids. Entries can
// be extended or overridden via the coingecko.symbol_ids config section.
var defaultSymbolIDs = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"USDT": "tether",
	"BNB":  "binancecoin",
	"XRP":  "ripple",
	"DOGE": "dogecoin",
	"TON":  "the-open-network",
	"ADA":  "cardano",
	"ARB":  "arbitrum",
	"OP":   "optimism",
}

// RestClientInterface defines the interface for the CoinGecko REST API client.
type RestClientInterface interface {
	Ping() error
	GetSimplePrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// RestClient is a client for the CoinGecko REST API.
// It implements the RestClientInterface.
type RestClient struct {
	client    *resty.Client
	symbolIDs map[string]string
	logger    *zap.Logger
	limiter   *rate.Limiter
}

// ensure RestClient implements the interface
var _ RestClientInterface = (*RestClient)(nil)

// NewRestClient creates a new CoinGecko REST API client.
func NewRestClient(cfg *config.CoinGecko, logger *zap.Logger) *RestClient {
	client := resty.New().SetBaseURL(cfg.BaseURL)

	// Initialize the rate limiter
	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	symbolIDs := make(map[string]string, len(defaultSymbolIDs)+len(cfg.SymbolIDs))
	for symbol, id := range defaultSymbolIDs {
		symbolIDs[symbol] = id
	}
	for symbol, id := range cfg.SymbolIDs {
		symbolIDs[strings.ToUpper(symbol)] = id
	}

	return &RestClient{
		client:    client,
		symbolIDs: symbolIDs,
		logger:    logger,
		limiter:   limiter,
	}
}

// doRequest handles the actual request execution with rate limiting and retry logic.
func (c *RestClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	var lastErr error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		// Analyze error and decide whether to retry. An HTTP status error
		// arrives with a nil err from resty, so keep the status around for
		// the exhaustion message.
		lastErr = err
		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil {
			statusCode := resp.StatusCode()
			if lastErr == nil {
				lastErr = fmt.Errorf("status %s: %s", resp.Status(), resp.String())
			}
			if statusCode == http.StatusTooManyRequests {
				// CoinGecko throttles the free tier aggressively and sets Retry-After.
				shouldRetry = true
				retryAfterHeader := resp.Header().Get("Retry-After")
				if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 { // Server errors
				shouldRetry = true
			}
		} else { // Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}

		// If we should retry, calculate wait time
		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(lastErr),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

// Ping checks connectivity to the CoinGecko API.
func (c *RestClient) Ping() error {
	type pingResponse struct {
		GeckoSays string `json:"gecko_says"`
	}

	req := c.client.R().
		SetResult(&pingResponse{})
	ctx := context.Background()

	if _, err := c.doRequest(ctx, "GET", "/ping", req); err != nil {
		c.logger.Error("Failed to ping CoinGecko", zap.Error(err))
		return fmt.Errorf("failed to ping CoinGecko: %w", err)
	}

	return nil
}

// GetSimplePrices fetches the current USD price for the given tickers via the
// /simple/price endpoint. Tickers without a registered CoinGecko id, and ids
// the API returns no quote for, are simply absent from the result; the caller
// decides what a missing quote means.
func (c *RestClient) GetSimplePrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	idToSymbol := make(map[string]string, len(symbols))
	for _, symbol := range symbols {
		symbol = strings.ToUpper(symbol)
		id, ok := c.symbolIDs[symbol]
		if !ok {
			c.logger.Warn("No CoinGecko id registered for symbol", zap.String("symbol", symbol))
			continue
		}
		idToSymbol[id] = symbol
	}

	if len(idToSymbol) == 0 {
		return map[string]decimal.Decimal{}, nil
	}

	ids := make([]string, 0, len(idToSymbol))
	for id := range idToSymbol {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var quotes map[string]map[string]decimal.Decimal

	req := c.client.R().
		SetQueryParams(map[string]string{
			"ids":           strings.Join(ids, ","),
			"vs_currencies": vsCurrency,
		}).
		SetResult(&quotes).
		SetHeader("Accept", "application/json")

	resp, err := c.doRequest(ctx, "GET", "/simple/price", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get simple prices: %w", err)
	}

	result := resp.Result().(*map[string]map[string]decimal.Decimal)
	prices := make(map[string]decimal.Decimal, len(*result))
	for id, quote := range *result {
		symbol, ok := idToSymbol[id]
		if !ok {
			continue
		}
		usd, ok := quote[vsCurrency]
		if !ok || !usd.IsPositive() {
			c.logger.Warn("CoinGecko returned no usable USD quote", zap.String("id", id))
			continue
		}
		prices[symbol] = usd
	}

	return prices, nil
}
