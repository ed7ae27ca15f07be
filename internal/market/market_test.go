package market

import (
	"testing"
	"time"

	"robo_advisor/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(day int, close float64) models.Bar {
	// Alpaca stamps daily bars at 04:00 or 05:00 UTC depending on DST.
	return models.Bar{
		Time:  time.Date(2024, time.March, day, 4, 0, 0, 0, time.UTC),
		Close: decimal.NewFromFloat(close),
	}
}

func TestAlign_InnerJoinOrdered(t *testing.T) {
	series := map[string][]models.Bar{
		"SPY": {bar(6, 512.1), bar(4, 510.0), bar(5, 511.5), bar(7, 514.0)},
		"AGG": {bar(4, 97.1), bar(5, 97.2), bar(7, 97.4), bar(8, 97.5)},
	}

	table, err := Align(series, []string{"AGG", "SPY"})
	require.NoError(t, err)

	assert.Equal(t, []string{"AGG", "SPY"}, table.Tickers)
	require.Equal(t, 3, table.Len())

	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), table.Rows[0].Date)
	assert.Equal(t, time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC), table.Rows[2].Date)

	assert.Equal(t, []float64{97.1, 97.2, 97.4}, table.Column("AGG"))
	assert.Equal(t, []float64{510.0, 511.5, 514.0}, table.Column("SPY"))
	assert.Nil(t, table.Column("QQQ"))
}

func TestAlign_SameDayDifferentHours(t *testing.T) {
	late := bar(4, 510.0)
	late.Time = late.Time.Add(time.Hour)

	table, err := Align(map[string][]models.Bar{
		"SPY": {late},
		"AGG": {bar(4, 97.1)},
	}, []string{"AGG", "SPY"})
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestAlign_Errors(t *testing.T) {
	_, err := Align(map[string][]models.Bar{"SPY": {bar(4, 1)}}, []string{"AGG", "SPY"})
	assert.ErrorIs(t, err, ErrMissingSeries)

	_, err = Align(map[string][]models.Bar{
		"SPY": {bar(4, 1)},
		"AGG": {bar(5, 1)},
	}, []string{"AGG", "SPY"})
	assert.ErrorIs(t, err, ErrNoCommonDays)

	_, err = Align(nil, nil)
	assert.Error(t, err)
}

func TestTail(t *testing.T) {
	table, err := Align(map[string][]models.Bar{
		"SPY": {bar(4, 1), bar(5, 2), bar(6, 3)},
	}, []string{"SPY"})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 3}, Tail(table, 2).Column("SPY"))
	assert.Equal(t, 3, Tail(table, 0).Len())
	assert.Equal(t, 3, Tail(table, 10).Len())
}
