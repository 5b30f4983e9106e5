package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"papertrade/configs"
	"papertrade/internal/domain"
)

// maxQuoteBody bounds the provider response we are willing to read
const maxQuoteBody = 1 << 20

// MarketPriceService fetches quotes from an IEX-style HTTP API
type MarketPriceService struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	symbolPath string
	namePath   string
	pricePath  string
	logger     *zap.Logger
}

// NewMarketPriceService creates a new MarketPriceService
func NewMarketPriceService(cfg configs.QuoteConfig, logger *zap.Logger) *MarketPriceService {
	return &MarketPriceService{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		symbolPath: cfg.SymbolPath,
		namePath:   cfg.NamePath,
		pricePath:  cfg.PricePath,
		logger:     logger.Named("quotes"),
	}
}

// Lookup fetches the current quote for symbol. Every failure is reported as
// QuoteUnavailable; only provider faults are logged.
func (s *MarketPriceService) Lookup(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, domain.NewQuoteUnavailable("Symbol cannot be blank")
	}
	unavailable := domain.NewQuoteUnavailable("Invalid symbol")

	endpoint := fmt.Sprintf("%s/stock/%s/quote", s.baseURL, url.PathEscape(symbol))
	if s.apiKey != "" {
		endpoint += "?token=" + url.QueryEscape(s.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		s.logger.Warn("failed to create quote request", zap.String("symbol", symbol), zap.Error(err))
		return nil, unavailable
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("quote provider unreachable", zap.String("symbol", symbol), zap.Error(err))
		return nil, unavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxQuoteBody))
	if err != nil {
		s.logger.Warn("failed to read quote response", zap.String("symbol", symbol), zap.Error(err))
		return nil, unavailable
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, unavailable
	default:
		s.logger.Warn("quote provider error",
			zap.String("symbol", symbol),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 200)),
		)
		return nil, unavailable
	}

	quote, err := s.parseQuote(body, symbol)
	if err != nil {
		s.logger.Warn("unreadable quote", zap.String("symbol", symbol), zap.Error(err))
		return nil, unavailable
	}
	return quote, nil
}

// parseQuote extracts symbol, name and price from the provider payload
func (s *MarketPriceService) parseQuote(body []byte, requested string) (*domain.Quote, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}

	rawPrice, err := extract(s.pricePath, payload)
	if err != nil {
		return nil, err
	}
	price, err := toDecimal(rawPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid price at %q: %w", s.pricePath, err)
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("non-positive price %s", price)
	}

	quote := &domain.Quote{Symbol: requested, Name: requested, Price: price}
	if v, err := extract(s.symbolPath, payload); err == nil {
		if str, ok := v.(string); ok && str != "" {
			quote.Symbol = strings.ToUpper(str)
		}
	}
	if v, err := extract(s.namePath, payload); err == nil {
		if str, ok := v.(string); ok && str != "" {
			quote.Name = str
		}
	}
	return quote, nil
}

// extract evaluates a JSONPath and unwraps single-element results
func extract(path string, payload any) (any, error) {
	val, err := jsonpath.Get(path, payload)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// jsonpath may answer with a list of one element or with the element itself
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return nil, fmt.Errorf("no value at %q", path)
		}
		val = list[0]
	}
	if val == nil {
		return nil, fmt.Errorf("null value at %q", path)
	}
	return val, nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case json.Number:
		return decimal.NewFromString(x.String())
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(x))
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported type %T", v)
	}
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
