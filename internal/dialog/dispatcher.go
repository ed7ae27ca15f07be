package dialog

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrUnsupportedIntent is returned for intents without a registered handler.
var ErrUnsupportedIntent = errors.New("intent not supported")

// IntentHandler serves one intent.
type IntentHandler interface {
	Handle(ctx context.Context, ev Event) (Response, error)
}

// HandlerFunc adapts a function to IntentHandler.
type HandlerFunc func(ctx context.Context, ev Event) (Response, error)

func (f HandlerFunc) Handle(ctx context.Context, ev Event) (Response, error) {
	return f(ctx, ev)
}

// Dispatcher routes events to handlers by intent name.
type Dispatcher struct {
	handlers map[string]IntentHandler
	log      zerolog.Logger
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher(log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]IntentHandler),
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// Register binds a handler to an intent name, replacing any previous one.
func (d *Dispatcher) Register(intent string, h IntentHandler) {
	d.handlers[intent] = h
}

// Intents returns the number of registered intents.
func (d *Dispatcher) Intents() int {
	return len(d.handlers)
}

// Dispatch hands the event to the handler of its intent.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) (Response, error) {
	name := ev.CurrentIntent.Name
	h, ok := d.handlers[name]
	if !ok {
		return Response{}, fmt.Errorf("%w: %q", ErrUnsupportedIntent, name)
	}

	d.log.Debug().
		Str("intent", name).
		Str("source", ev.InvocationSource).
		Str("user", ev.UserID).
		Msg("Dispatching intent")

	return h.Handle(ctx, ev)
}
