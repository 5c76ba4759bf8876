// Package yahoo implements the market data provider against the public
// Yahoo Finance quote and chart endpoints.
package yahoo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/seetoh/stockdash/internal/domain"
)

const (
	quoteURL = "https://query1.finance.yahoo.com/v7/finance/quote"
	chartURL = "https://query1.finance.yahoo.com/v8/finance/chart"
)

// Client is a Yahoo Finance API client
type Client struct {
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. The timeout bounds every
// provider call; failures surface to the cache which applies its stale
// fallback policy.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("client", "yahoo").Logger(),
	}
}

// FxSymbol converts a currency pair like "USDSGD" to Yahoo's "USDSGD=X".
func FxSymbol(pair string) string {
	return pair + "=X"
}

// GetQuote fetches the current price and day change for a symbol.
func (c *Client) GetQuote(symbol string) (*domain.Quote, error) {
	info, err := c.getQuoteInfo(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote info: %w", err)
	}

	price := getFloat64(info, "regularMarketPrice")
	if price == nil {
		price = getFloat64(info, "currentPrice")
	}
	if price == nil || *price <= 0 {
		return nil, fmt.Errorf("no valid price for %s", symbol)
	}

	return &domain.Quote{
		Symbol:    symbol,
		Price:     *price,
		Change:    getFloat64OrZero(info, "regularMarketChange"),
		ChangePct: getFloat64OrZero(info, "regularMarketChangePercent"),
		AsOf:      time.Now().UTC(),
	}, nil
}

// GetFundamentals fetches the fundamental metrics snapshot for a symbol.
// Fields Yahoo does not report stay nil; the scoring engine substitutes
// neutral midpoints for them.
func (c *Client) GetFundamentals(symbol string) (*domain.FundamentalsSnapshot, error) {
	info, err := c.getQuoteInfo(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote info: %w", err)
	}

	return &domain.FundamentalsSnapshot{
		Symbol:          symbol,
		PERatio:         getFloat64(info, "trailingPE"),
		ForwardPE:       getFloat64(info, "forwardPE"),
		ROE:             getFloat64(info, "returnOnEquity"),
		OperatingMargin: getFloat64(info, "operatingMargins"),
		EPS:             getFloat64(info, "epsTrailingTwelveMonths"),
		QuickRatio:      getFloat64(info, "quickRatio"),
		FreeCashFlow:    getFloat64(info, "freeCashflow"),
		MarketCap:       getInt64(info, "marketCap"),
		Beta:            getFloat64(info, "beta"),
		Sector:          getString(info, "sector", ""),
		Company:         getString(info, "longName", symbol),
	}, nil
}

// GetHistory fetches a daily close-price series for the given range.
// Indicator fields are left nil; the market data service derives them.
func (c *Client) GetHistory(symbol string, rng domain.HistoryRange) (*domain.TechnicalSeries, error) {
	params := url.Values{}
	params.Add("range", string(rng))
	params.Add("interval", "1d")

	reqURL := fmt.Sprintf("%s/%s?%s", chartURL, url.PathEscape(symbol), params.Encode())

	body, err := c.doGet(reqURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chart for %s: %w", symbol, err)
	}

	var result yahooChartResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse chart response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance chart error: %v", result.Chart.Error)
	}
	if len(result.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data returned for symbol %s", symbol)
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart response missing quote indicators for %s", symbol)
	}

	closes := r.Indicators.Quote[0].Close
	series := &domain.TechnicalSeries{Symbol: symbol}
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // market holidays leave null closes
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		series.Dates = append(series.Dates, day)
		series.Prices = append(series.Prices, *closes[i])
	}

	if len(series.Prices) == 0 {
		return nil, fmt.Errorf("empty price history for symbol %s", symbol)
	}

	return series, nil
}

// GetFxRate fetches the current exchange rate for a pair like "USDSGD".
func (c *Client) GetFxRate(pair string) (*domain.FxRate, error) {
	info, err := c.getQuoteInfo(FxSymbol(pair))
	if err != nil {
		return nil, fmt.Errorf("failed to get fx quote: %w", err)
	}

	rate := getFloat64(info, "regularMarketPrice")
	if rate == nil || *rate <= 0 {
		return nil, fmt.Errorf("no valid rate for pair %s", pair)
	}

	return &domain.FxRate{
		Pair: pair,
		Rate: *rate,
		AsOf: time.Now().UTC(),
	}, nil
}

// yahooQuoteResponse represents the response from Yahoo Finance quote API
type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []map[string]interface{} `json:"result"`
		Error  interface{}              `json:"error"`
	} `json:"quoteResponse"`
}

// yahooChartResponse represents the response from Yahoo Finance chart API
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

// getQuoteInfo fetches quote information from Yahoo Finance API
func (c *Client) getQuoteInfo(symbol string) (map[string]interface{}, error) {
	params := url.Values{}
	params.Add("symbols", symbol)
	params.Add("fields", "symbol,regularMarketPrice,currentPrice,regularMarketChange,"+
		"regularMarketChangePercent,sector,trailingPE,forwardPE,operatingMargins,"+
		"returnOnEquity,quickRatio,freeCashflow,epsTrailingTwelveMonths,marketCap,"+
		"beta,longName,shortName")

	body, err := c.doGet(quoteURL + "?" + params.Encode())
	if err != nil {
		return nil, err
	}

	var result yahooQuoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("Yahoo Finance API error: %v", result.QuoteResponse.Error)
	}

	if len(result.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol %s", symbol)
	}

	return result.QuoteResponse.Result[0], nil
}

func (c *Client) doGet(reqURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers to mimic browser
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Yahoo Finance API returned status %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

// Helper functions to safely extract values from map

func getFloat64(m map[string]interface{}, key string) *float64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			return &v
		case int:
			f := float64(v)
			return &f
		case int64:
			f := float64(v)
			return &f
		}
	}
	return nil
}

func getFloat64OrZero(m map[string]interface{}, key string) float64 {
	if val := getFloat64(m, key); val != nil {
		return *val
	}
	return 0
}

func getInt64(m map[string]interface{}, key string) *int64 {
	if val, ok := m[key]; ok && val != nil {
		switch v := val.(type) {
		case float64:
			i := int64(v)
			return &i
		case int64:
			return &v
		case int:
			i := int64(v)
			return &i
		}
	}
	return nil
}

func getString(m map[string]interface{}, key, fallback string) string {
	if val, ok := m[key]; ok && val != nil {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
