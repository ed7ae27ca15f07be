// Package simulation is the client side of the Monte Carlo forecasting service.
// The service runs the trials; this package only ships it the inputs and
// reads back the distribution of cumulative returns.
package simulation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"robo_advisor/internal/forecast"
	"robo_advisor/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TradingDaysPerYear converts a horizon in years to simulated trading days.
const TradingDaysPerYear = 252

const (
	simulatePath     = "/api/v1/simulate/monte-carlo"
	requestIDHeader  = "X-Request-Id"
	maxErrorBodySize = 512
)

// ErrEmptyResult is returned when the service answers without a usable distribution.
var ErrEmptyResult = errors.New("simulation returned no distribution")

// Request describes one forecast: the aligned price history, the weight of
// each ticker and the size of the run.
type Request struct {
	Prices      models.PriceTable `json:"prices"`
	Weights     []float64         `json:"weights"`
	Trials      int               `json:"num_simulation"`
	TradingDays int               `json:"num_trading_days"`
}

// NewRequest builds a Request for a horizon expressed in years.
func NewRequest(prices models.PriceTable, weights []float64, trials, years int) Request {
	return Request{
		Prices:      prices,
		Weights:     weights,
		Trials:      trials,
		TradingDays: TradingDaysPerYear * years,
	}
}

// Validate checks the request before it goes over the wire.
func (r Request) Validate() error {
	if len(r.Weights) != len(r.Prices.Tickers) {
		return fmt.Errorf("got %d weights for %d tickers", len(r.Weights), len(r.Prices.Tickers))
	}
	if r.Prices.Len() < 2 {
		return fmt.Errorf("need at least 2 days of prices, got %d", r.Prices.Len())
	}
	if r.Trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d", r.Trials)
	}
	if r.TradingDays <= 0 {
		return fmt.Errorf("trading days must be positive, got %d", r.TradingDays)
	}
	return nil
}

// Simulator runs a forecast and returns the distribution of terminal return multiples.
type Simulator interface {
	Simulate(ctx context.Context, req Request) (forecast.Distribution, error)
}

type response struct {
	Summary           []float64 `json:"summary"`
	TerminalMultiples []float64 `json:"terminal_multiples"`
}

// HTTPClient talks to the forecasting service over JSON/HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Ensure HTTPClient implements the interface
var _ Simulator = (*HTTPClient)(nil)

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, log zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log.With().Str("component", "simulation").Logger(),
	}
}

// Simulate posts the request and decodes the distribution. The service may
// answer with a ready summary or with the raw terminal multiple of every
// trial; the latter is summarised locally.
func (c *HTTPClient) Simulate(ctx context.Context, req Request) (forecast.Distribution, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation request: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal simulation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+simulatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(requestIDHeader, requestID(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("simulation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("simulation service error %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode simulation response: %w", err)
	}

	c.log.Debug().
		Int("trials", req.Trials).
		Int("trading_days", req.TradingDays).
		Dur("elapsed", time.Since(start)).
		Msg("Simulation completed")

	switch {
	case len(out.Summary) >= forecast.DistributionLen:
		return forecast.Distribution(out.Summary), nil
	case len(out.TerminalMultiples) > 0:
		return forecast.Describe(out.TerminalMultiples)
	default:
		return nil, ErrEmptyResult
	}
}

// requestID reuses the inbound request ID so both services log the same value.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
