// Package forecast turns a simulated cumulative-return distribution into the
// advisory message shown to the user.
package forecast

import (
	"fmt"
	"math"
	"strings"

	"robo_advisor/internal/allocation"

	"github.com/shopspring/decimal"
)

// Positions of the fields in a Distribution.
const (
	IdxCount = iota
	IdxMean
	IdxStd
	IdxMin
	IdxP25
	IdxP50
	IdxP75
	IdxMax
	IdxCILower
	IdxCIUpper

	// DistributionLen is the minimum length of a usable Distribution.
	DistributionLen
)

// Distribution is the statistical summary of simulated terminal return
// multiples (1.5 means the portfolio grew 50%). Only the positions above are
// meaningful; extra trailing entries are ignored.
type Distribution []float64

// Interval returns the lower and upper bounds of the 95% confidence interval.
// The caller must have checked the length.
func (d Distribution) Interval() (lower, upper float64) {
	return d[IdxCILower], d[IdxCIUpper]
}

// InputError reports a malformed argument to Summarize or Describe.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Summarize builds the advisory message for a simulation result.
//
// Bounds are rounded to 2 decimal places, half away from zero, on their
// shortest decimal representation, and printed without trailing zeros
// (1.5 stays "1.5", 1.234 becomes "1.23").
func Summarize(dist Distribution, horizonYears int, level allocation.RiskLevel, name string) (string, error) {
	if len(dist) < DistributionLen {
		return "", &InputError{
			Field:  "distribution",
			Reason: fmt.Sprintf("need at least %d entries, got %d", DistributionLen, len(dist)),
		}
	}
	if horizonYears <= 0 {
		return "", &InputError{Field: "horizon", Reason: fmt.Sprintf("must be a positive number of years, got %d", horizonYears)}
	}
	if strings.TrimSpace(name) == "" {
		return "", &InputError{Field: "name", Reason: "must not be empty"}
	}

	lower, upper := dist.Interval()
	if !finite(lower) || !finite(upper) {
		return "", &InputError{Field: "distribution", Reason: "confidence bounds must be finite"}
	}

	return fmt.Sprintf("%s, the 95%% confidence interval for %d year returns on a %s risk portfolio is %sx - %sx",
		name, horizonYears, level, FormatBound(lower), FormatBound(upper)), nil
}

// FormatBound rounds a return multiple to 2 decimal places.
func FormatBound(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
