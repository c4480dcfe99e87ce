package autocomplete

import (
	"github.com/dshills/mentions/internal/autocomplete/surface"
	"github.com/dshills/mentions/internal/event"
	"github.com/dshills/mentions/internal/logging"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the diagnostic logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithLocator sets the caret screen position service.
func WithLocator(loc surface.CaretLocator) Option {
	return func(e *Engine) {
		if loc != nil {
			e.locator = loc
		}
	}
}

// WithBus publishes state changes on bus.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}
