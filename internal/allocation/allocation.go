// Package allocation maps a user's risk tolerance onto a bond/equity split.
package allocation

import (
	"errors"
	"fmt"
)

// RiskLevel is the risk tolerance tag selected in the conversation.
// Values are matched exactly (case-sensitive).
type RiskLevel string

const (
	RiskNone    RiskLevel = "none"
	RiskVeryLow RiskLevel = "veryLow"
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
)

// ErrUnknownRiskLevel is returned by ParseRiskLevel for tags outside the known set.
var ErrUnknownRiskLevel = errors.New("unknown risk level")

// Weights is the fraction of the portfolio held in the bond proxy and the equity proxy.
type Weights struct {
	Bond   float64 `json:"bond"`
	Equity float64 `json:"equity"`
}

// Slice returns the weights in simulator order: bond first, equity second.
func (w Weights) Slice() []float64 {
	return []float64{w.Bond, w.Equity}
}

// AllEquity is the allocation used for any tag that is not a known level.
var AllEquity = Weights{Bond: 0, Equity: 1}

var table = map[RiskLevel]Weights{
	RiskNone:    {Bond: 1.0, Equity: 0.0},
	RiskVeryLow: {Bond: 0.8, Equity: 0.2},
	RiskLow:     {Bond: 0.6, Equity: 0.4},
	RiskMedium:  {Bond: 0.4, Equity: 0.6},
	RiskHigh:    {Bond: 0.2, Equity: 0.8},
}

// Levels lists the known risk levels by increasing equity exposure.
func Levels() []RiskLevel {
	return []RiskLevel{RiskNone, RiskVeryLow, RiskLow, RiskMedium, RiskHigh}
}

// Known reports whether l is one of the named levels.
func (l RiskLevel) Known() bool {
	_, ok := table[l]
	return ok
}

// ParseRiskLevel converts a raw tag into a RiskLevel, rejecting anything
// outside the named levels. Use it at the edge when an unknown tag should
// fail instead of silently falling back to AllEquity.
func ParseRiskLevel(tag string) (RiskLevel, error) {
	l := RiskLevel(tag)
	if !l.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRiskLevel, tag)
	}
	return l, nil
}

// Resolve returns the allocation for a risk level. It never fails: unset or
// unrecognised levels resolve to AllEquity. Callers that need to know about
// the fallback check Known first.
func Resolve(level RiskLevel) Weights {
	if w, ok := table[level]; ok {
		return w
	}
	return AllEquity
}
