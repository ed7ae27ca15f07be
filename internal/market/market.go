package market

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"robo_advisor/internal/models"
)

var (
	// ErrMissingSeries is returned when a requested ticker has no bars at all.
	ErrMissingSeries = errors.New("no price data for ticker")
	// ErrNoCommonDays is returned when the series share no trading day.
	ErrNoCommonDays = errors.New("price series have no trading days in common")
)

// PriceFeed is an Interface over whatever supplies historical prices.
// The Alpaca implementation lives in market/alpaca; tests use in-memory fakes.
type PriceFeed interface {
	// GetDailyCloses returns the last `days` trading days on which every
	// ticker traded, oldest first, with one close per ticker in ticker order.
	GetDailyCloses(ctx context.Context, tickers []string, days int) (models.PriceTable, error)
}

// Align inner-joins the bar series of several tickers on their trading day
// (UTC calendar date). Days missing from any series are dropped. Rows come
// back oldest first with closes in the order of tickers. If a ticker has two
// bars on the same day, the later one wins.
func Align(series map[string][]models.Bar, tickers []string) (models.PriceTable, error) {
	if len(tickers) == 0 {
		return models.PriceTable{}, fmt.Errorf("align: no tickers")
	}

	byDay := make([]map[time.Time]float64, len(tickers))
	for i, ticker := range tickers {
		bars := series[ticker]
		if len(bars) == 0 {
			return models.PriceTable{}, fmt.Errorf("%w: %s", ErrMissingSeries, ticker)
		}
		m := make(map[time.Time]float64, len(bars))
		for _, b := range bars {
			m[tradingDay(b.Time)] = b.Close.InexactFloat64()
		}
		byDay[i] = m
	}

	var days []time.Time
	for day := range byDay[0] {
		inAll := true
		for _, m := range byDay[1:] {
			if _, ok := m[day]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return models.PriceTable{}, ErrNoCommonDays
	}
	sort.Slice(days, func(a, b int) bool { return days[a].Before(days[b]) })

	table := models.PriceTable{
		Tickers: append([]string(nil), tickers...),
		Rows:    make([]models.PriceRow, len(days)),
	}
	for r, day := range days {
		closes := make([]float64, len(tickers))
		for i := range tickers {
			closes[i] = byDay[i][day]
		}
		table.Rows[r] = models.PriceRow{Date: day, Closes: closes}
	}
	return table, nil
}

// Tail keeps the last n rows of a table. n <= 0 keeps everything.
func Tail(t models.PriceTable, n int) models.PriceTable {
	if n <= 0 || len(t.Rows) <= n {
		return t
	}
	t.Rows = t.Rows[len(t.Rows)-n:]
	return t
}

func tradingDay(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
