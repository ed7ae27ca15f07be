package alpaca

import (
	"context"
	"fmt"
	"time"

	"robo_advisor/internal/market"
	"robo_advisor/internal/models"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Options configures the market data client. Empty credentials make the SDK
// fall back to the APCA_API_* environment variables.
type Options struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Feed      string // "iex" (free plan) or "sip"
}

// Provider implements market.PriceFeed on top of Alpaca's market data API.
type Provider struct {
	mdClient *marketdata.Client
	feed     marketdata.Feed
	log      zerolog.Logger
	now      func() time.Time
}

// Ensure Provider implements the interface
var _ market.PriceFeed = (*Provider)(nil)

// NewProvider returns a new Alpaca provider.
func NewProvider(opts Options, log zerolog.Logger) *Provider {
	return &Provider{
		mdClient: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    opts.APIKey,
			APISecret: opts.APISecret,
			BaseURL:   opts.BaseURL,
		}),
		feed: marketdata.Feed(opts.Feed),
		log:  log.With().Str("component", "alpaca").Logger(),
		now:  time.Now,
	}
}

// GetDailyCloses fetches daily bars for all tickers in one request and keeps
// the last `days` trading days they have in common.
func (p *Provider) GetDailyCloses(ctx context.Context, tickers []string, days int) (models.PriceTable, error) {
	if days <= 0 {
		return models.PriceTable{}, fmt.Errorf("days must be positive, got %d", days)
	}
	if err := ctx.Err(); err != nil {
		return models.PriceTable{}, err
	}

	start := p.now().AddDate(0, 0, -lookbackCalendarDays(days))
	p.log.Debug().
		Strs("tickers", tickers).
		Int("days", days).
		Time("start", start).
		Msg("Fetching daily bars")

	raw, err := p.mdClient.GetMultiBars(tickers, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.All,
		Start:      start,
		Feed:       p.feed,
	})
	if err != nil {
		return models.PriceTable{}, fmt.Errorf("alpaca bars %v: %w", tickers, err)
	}

	series := make(map[string][]models.Bar, len(raw))
	for symbol, bars := range raw {
		series[symbol] = mapBars(bars)
	}

	table, err := market.Align(series, tickers)
	if err != nil {
		return models.PriceTable{}, err
	}
	table = market.Tail(table, days)

	if table.Len() < days {
		p.log.Warn().
			Int("wanted", days).
			Int("got", table.Len()).
			Msg("Fewer common trading days than requested")
	}
	return table, nil
}

// lookbackCalendarDays converts trading days to a calendar window that
// comfortably covers weekends and exchange holidays.
func lookbackCalendarDays(tradingDays int) int {
	return tradingDays*7/5 + 14
}

// Helpers

func mapBars(bars []marketdata.Bar) []models.Bar {
	result := make([]models.Bar, 0, len(bars))
	for _, b := range bars {
		result = append(result, models.Bar{
			Time:  b.Timestamp,
			Close: decimal.NewFromFloat(b.Close),
		})
	}
	return result
}
