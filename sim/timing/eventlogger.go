package timing

import (
	"reflect"

	"github.com/rs/zerolog"

	"github.com/sarchlab/advertise/sim/hooking"
)

// EventLogger is a hook that writes every dispatched event to a logger at
// debug level, and every handler error at warn level.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger zerolog.Logger) *EventLogger {
	h := new(EventLogger)

	h.logger = logger

	return h
}

type named interface {
	Name() string
}

// Func writes the event information into the logger
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	switch ctx.Pos {
	case HookPosBeforeEvent:
		h.logger.Debug().
			Float64("time", evt.Time()).
			Str("event", reflect.TypeOf(evt).String()).
			Str("handler", handlerName(evt)).
			Msg("event")
	case HookPosAfterEvent:
		err, isErr := ctx.Detail.(error)
		if !isErr {
			return
		}

		h.logger.Warn().
			Err(err).
			Float64("time", evt.Time()).
			Str("handler", handlerName(evt)).
			Msg("event handler failed")
	}
}

func handlerName(evt Event) string {
	if n, ok := evt.Handler().(named); ok {
		return n.Name()
	}

	return reflect.TypeOf(evt.Handler()).String()
}
