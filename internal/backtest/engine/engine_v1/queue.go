package engine

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// EventSink is the push-only queue handle handed to components. Only the
// backtest driver drains the queue; components never read from it.
type EventSink interface {
	Push(event types.Event)
}

// EventQueue is a strict FIFO queue of simulation events. It is not safe
// for concurrent use; the simulation runs on a single goroutine.
type EventQueue struct {
	events []types.Event
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{events: nil}
}

// Push appends an event to the back of the queue.
func (q *EventQueue) Push(event types.Event) {
	q.events = append(q.events, event)
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

func (q *EventQueue) pop() (types.Event, bool) {
	if len(q.events) == 0 {
		return types.Event{}, false
	}

	event := q.events[0]
	q.events = q.events[1:]

	return event, true
}

// EventHandlers maps each event kind to exactly one callback. Every field
// must be set; dispatch is exhaustive.
type EventHandlers struct {
	OnMarketUpdate func(event types.Event) error
	OnSessionOpen  func(event types.Event) error
	OnSessionClose func(event types.Event) error
	OnBacktestEnd  func(event types.Event) error
	OnOrder        func(event types.Event) error
	OnFill         func(event types.Event) error
}

func (h *EventHandlers) handlerFor(eventType types.EventType) (func(types.Event) error, error) {
	var handler func(types.Event) error

	switch eventType {
	case types.EventTypeMarketUpdate:
		handler = h.OnMarketUpdate
	case types.EventTypeSessionOpen:
		handler = h.OnSessionOpen
	case types.EventTypeSessionClose:
		handler = h.OnSessionClose
	case types.EventTypeBacktestEnd:
		handler = h.OnBacktestEnd
	case types.EventTypeOrder:
		handler = h.OnOrder
	case types.EventTypeFill:
		handler = h.OnFill
	default:
		return nil, errors.Newf(errors.ErrCodeUnknownEvent, "no handler for event type %s", eventType)
	}

	if handler == nil {
		return nil, errors.Newf(errors.ErrCodeUnknownEvent, "handler for event type %s is nil", eventType)
	}

	return handler, nil
}

// DrainAll pops events in FIFO order until the queue is empty, dispatching
// each to its handler. Handlers may push derived events onto the same
// queue; those are drained within the same call, so every cascade from one
// clock tick resolves before the clock advances again. Each event is
// delivered at most once. A handler error stops the drain and propagates.
func (q *EventQueue) DrainAll(handlers EventHandlers) error {
	for {
		event, ok := q.pop()
		if !ok {
			return nil
		}

		handler, err := handlers.handlerFor(event.Type)
		if err != nil {
			return err
		}

		if err := handler(event); err != nil {
			return err
		}
	}
}
