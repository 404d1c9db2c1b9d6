package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

type Side string

type OrderType string

type TimeInForce string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

const (
	OrderTypeMarket OrderType = "MARKET"
)

const (
	TimeInForceDay TimeInForce = "DAY"
)

// Direction returns +1 for buys and -1 for sells.
func (s Side) Direction() float64 {
	if s == SideSell {
		return -1
	}

	return 1
}

// Order is an intent to trade, created only by a Strategy.
type Order struct {
	ID          string      `yaml:"id" json:"id" csv:"id"`
	Symbol      string      `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side        Side        `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	Quantity    float64     `yaml:"quantity" json:"quantity" csv:"quantity" validate:"required,gt=0"`
	OrderType   OrderType   `yaml:"order_type" json:"order_type" csv:"order_type" validate:"required,oneof=MARKET"`
	TimeInForce TimeInForce `yaml:"time_in_force" json:"time_in_force" csv:"time_in_force" validate:"required,oneof=DAY"`
	// CreatedAt is the simulation time at which the Strategy emitted the order.
	CreatedAt time.Time `yaml:"created_at" json:"created_at" csv:"created_at" validate:"required"`
	// StrategyName is the name of the strategy that created this order.
	StrategyName string `yaml:"strategy_name" json:"strategy_name" csv:"strategy_name"`
}

// Fill is a realized trade, created only by the Broker. An order's full
// quantity is always filled in a single Fill.
type Fill struct {
	ID        string    `yaml:"id" json:"id" csv:"id"`
	OrderID   string    `yaml:"order_id" json:"order_id" csv:"order_id"`
	Timestamp time.Time `yaml:"timestamp" json:"timestamp" csv:"timestamp" validate:"required"`
	Symbol    string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Side      Side      `yaml:"side" json:"side" csv:"side" validate:"required,oneof=BUY SELL"`
	Quantity  float64   `yaml:"quantity" json:"quantity" csv:"quantity" validate:"required,gt=0"`
	FillPrice float64   `yaml:"fill_price" json:"fill_price" csv:"fill_price" validate:"required,gt=0"`
	Fees      float64   `yaml:"fees" json:"fees" csv:"fees" validate:"gte=0"`
}

var validate = validator.New()

// Validate validates the Order struct.
func (o *Order) Validate() error {
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrder, "invalid order", err)
	}

	return nil
}

// Validate validates the Fill struct.
func (f *Fill) Validate() error {
	if err := validate.Struct(f); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFill, "invalid fill", err)
	}

	return nil
}
