package dialog

import (
	"context"
	"fmt"

	"robo_advisor/internal/allocation"
	"robo_advisor/internal/forecast"
	"robo_advisor/internal/market"
	"robo_advisor/internal/simulation"

	"github.com/rs/zerolog"
)

// IntentRecommendPortfolio is the intent served by Advisor.
const IntentRecommendPortfolio = "RecommendPortfolio"

const msgForecastUnavailable = "Sorry, I could not prepare your forecast right now. Please try again later."

// Notifier receives a copy of every fulfilled recommendation.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// AdvisorOptions sets the portfolio and the simulation run.
type AdvisorOptions struct {
	BondTicker   string
	EquityTicker string
	HistoryDays  int // trading days of price history fed to the simulation
	Trials       int
	Years        int
}

// Advisor handles the RecommendPortfolio intent.
type Advisor struct {
	feed     market.PriceFeed
	sim      simulation.Simulator
	notifier Notifier
	opts     AdvisorOptions
	log      zerolog.Logger
}

// NewAdvisor creates an Advisor. notifier may be nil.
func NewAdvisor(feed market.PriceFeed, sim simulation.Simulator, notifier Notifier, opts AdvisorOptions, log zerolog.Logger) *Advisor {
	return &Advisor{
		feed:     feed,
		sim:      sim,
		notifier: notifier,
		opts:     opts,
		log:      log.With().Str("intent", IntentRecommendPortfolio).Logger(),
	}
}

// Handle validates slots on dialog hooks and produces the recommendation on
// fulfilment. A non-nil error always comes with a usable Close response.
func (a *Advisor) Handle(ctx context.Context, ev Event) (Response, error) {
	session := ev.SessionAttributes
	slots := ev.CurrentIntent.Slots

	// Fulfilment re-checks too; a client may skip the dialog hook.
	if result := ValidateSlots(slots); !result.Valid {
		cleared := slots.Clone()
		cleared[result.ViolatedSlot] = nil

		a.log.Debug().
			Str("slot", result.ViolatedSlot).
			Str("source", ev.InvocationSource).
			Msg("Slot failed validation")
		return NewElicitSlot(session, ev.CurrentIntent.Name, cleared, result.ViolatedSlot, result.Message), nil
	}

	if ev.InvocationSource == SourceDialogCodeHook {
		return NewDelegate(session, slots), nil
	}

	message, err := a.recommend(ctx, slots)
	if err != nil {
		return NewClose(session, Failed, PlainText(msgForecastUnavailable)), err
	}

	if a.notifier != nil {
		if err := a.notifier.Notify(ctx, message); err != nil {
			a.log.Warn().Err(err).Msg("Failed to notify operator")
		}
	}

	return NewClose(session, Fulfilled, PlainText(message)), nil
}

// recommend runs the whole forecast for the filled slots.
func (a *Advisor) recommend(ctx context.Context, slots Slots) (string, error) {
	name, _ := slots.Get(SlotFirstName)
	// Risk tags match exactly; padding or case changes fall back like any unknown tag.
	tag, _ := slots.Raw(SlotRiskLevel)

	level, err := allocation.ParseRiskLevel(tag)
	if err != nil {
		a.log.Warn().
			Err(err).
			Msg("Falling back to an all-equity portfolio")
		level = allocation.RiskLevel(tag)
	}
	weights := allocation.Resolve(level)

	tickers := []string{a.opts.BondTicker, a.opts.EquityTicker}
	prices, err := a.feed.GetDailyCloses(ctx, tickers, a.opts.HistoryDays)
	if err != nil {
		return "", fmt.Errorf("fetch prices: %w", err)
	}

	dist, err := a.sim.Simulate(ctx, simulation.NewRequest(prices, weights.Slice(), a.opts.Trials, a.opts.Years))
	if err != nil {
		return "", fmt.Errorf("simulate: %w", err)
	}

	message, err := forecast.Summarize(dist, a.opts.Years, level, name)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	lower, upper := dist.Interval()
	a.log.Info().
		Str("risk_level", tag).
		Float64("bond_weight", weights.Bond).
		Float64("equity_weight", weights.Equity).
		Float64("ci_lower", lower).
		Float64("ci_upper", upper).
		Msg("Recommendation ready")

	return message, nil
}
