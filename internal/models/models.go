package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bar is the daily close of one ticker.
type Bar struct {
	Time  time.Time
	Close decimal.Decimal
}

// PriceRow holds the closing price of every ticker of a PriceTable on one trading day.
// Closes is in the same order as PriceTable.Tickers.
type PriceRow struct {
	Date   time.Time `json:"date"`
	Closes []float64 `json:"closes"`
}

// PriceTable is a set of closing-price series aligned on common trading days,
// oldest first.
type PriceTable struct {
	Tickers []string   `json:"tickers"`
	Rows    []PriceRow `json:"rows"`
}

// Len returns the number of trading days in the table.
func (t PriceTable) Len() int {
	return len(t.Rows)
}

// Column returns the closes of one ticker, oldest first.
// It returns nil if the ticker is not part of the table.
func (t PriceTable) Column(ticker string) []float64 {
	idx := -1
	for i, s := range t.Tickers {
		if s == ticker {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	col := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		col[i] = r.Closes[idx]
	}
	return col
}
