package dialog

import (
	"math"
	"strconv"
)

// Slot names of the RecommendPortfolio intent.
const (
	SlotFirstName        = "firstName"
	SlotAge              = "age"
	SlotInvestmentAmount = "investmentAmount"
	SlotRiskLevel        = "riskLevel"
)

const minimumAge = 18

const (
	msgUnderage      = "You must be over 18 to use this service."
	msgInvalidAmount = "The amount to invest should be greater than zero. Please provide the amount in USD to invest."
)

// ValidationResult reports the first slot that failed validation, if any.
type ValidationResult struct {
	Valid        bool
	ViolatedSlot string
	Message      *Message
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func violation(slot, msg string) ValidationResult {
	return ValidationResult{Valid: false, ViolatedSlot: slot, Message: PlainText(msg)}
}

// ValidateSlots checks the numeric slots that are already filled. Unfilled
// slots pass; the front end elicits them on its own. Age is checked first.
func ValidateSlots(slots Slots) ValidationResult {
	if raw, ok := slots.Get(SlotAge); ok {
		age, err := parseNumber(raw)
		if err != nil || age < minimumAge {
			return violation(SlotAge, msgUnderage)
		}
	}

	if raw, ok := slots.Get(SlotInvestmentAmount); ok {
		amount, err := parseNumber(raw)
		if err != nil || amount <= 0 {
			return violation(SlotInvestmentAmount, msgInvalidAmount)
		}
	}

	return valid()
}

// parseNumber accepts any finite decimal number.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
