package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// EventType tags the fixed set of event kinds flowing through the queue.
type EventType string

const (
	// EventTypeMarketUpdate signals that new bars are available for the
	// current timestamp.
	EventTypeMarketUpdate EventType = "MARKET_UPDATE"
	// EventTypeSessionOpen marks a regular session open at the current timestamp.
	EventTypeSessionOpen EventType = "SESSION_OPEN"
	// EventTypeSessionClose marks a regular session close at the current
	// timestamp. Close times vary per date (early closes).
	EventTypeSessionClose EventType = "SESSION_CLOSE"
	// EventTypeBacktestEnd marks the final timestamp of the run.
	EventTypeBacktestEnd EventType = "BACKTEST_END"
	EventTypeOrder       EventType = "ORDER"
	EventTypeFill        EventType = "FILL"
)

// Event is the tagged union dispatched by the event queue. Only the payload
// matching the Type is set. Events are immutable once constructed and are
// dispatched at most once.
type Event struct {
	Type EventType
	// Time is the simulation timestamp at which the event was created.
	Time  time.Time
	Order optional.Option[Order]
	Fill  optional.Option[Fill]
}

// NewMarketUpdateEvent creates a MarketUpdate event for ts.
func NewMarketUpdateEvent(ts time.Time) Event {
	return Event{Type: EventTypeMarketUpdate, Time: ts, Order: optional.None[Order](), Fill: optional.None[Fill]()}
}

// NewSessionOpenEvent creates a SessionOpen event for ts.
func NewSessionOpenEvent(ts time.Time) Event {
	return Event{Type: EventTypeSessionOpen, Time: ts, Order: optional.None[Order](), Fill: optional.None[Fill]()}
}

// NewSessionCloseEvent creates a SessionClose event for ts.
func NewSessionCloseEvent(ts time.Time) Event {
	return Event{Type: EventTypeSessionClose, Time: ts, Order: optional.None[Order](), Fill: optional.None[Fill]()}
}

// NewBacktestEndEvent creates the terminal event for ts.
func NewBacktestEndEvent(ts time.Time) Event {
	return Event{Type: EventTypeBacktestEnd, Time: ts, Order: optional.None[Order](), Fill: optional.None[Fill]()}
}

// NewOrderEvent wraps an Order emitted by a Strategy.
func NewOrderEvent(order Order) Event {
	return Event{Type: EventTypeOrder, Time: order.CreatedAt, Order: optional.Some(order), Fill: optional.None[Fill]()}
}

// NewFillEvent wraps a Fill produced by the Broker.
func NewFillEvent(fill Fill) Event {
	return Event{Type: EventTypeFill, Time: fill.Timestamp, Order: optional.None[Order](), Fill: optional.Some(fill)}
}
