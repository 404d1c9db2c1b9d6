package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type OrderTestSuite struct {
	suite.Suite
}

func TestOrderSuite(t *testing.T) {
	suite.Run(t, new(OrderTestSuite))
}

func (suite *OrderTestSuite) validOrder() Order {
	return Order{
		Symbol:       "AAPL",
		Side:         SideBuy,
		Quantity:     10,
		OrderType:    OrderTypeMarket,
		TimeInForce:  TimeInForceDay,
		CreatedAt:    time.Date(2023, 8, 1, 9, 30, 0, 0, time.UTC),
		StrategyName: "test",
	}
}

func (suite *OrderTestSuite) TestValidateOrder() {
	order := suite.validOrder()
	suite.NoError(order.Validate())
}

func (suite *OrderTestSuite) TestValidateOrderZeroQuantity() {
	order := suite.validOrder()
	order.Quantity = 0
	suite.Error(order.Validate())
}

func (suite *OrderTestSuite) TestValidateOrderNegativeQuantity() {
	order := suite.validOrder()
	order.Quantity = -5
	suite.Error(order.Validate())
}

func (suite *OrderTestSuite) TestValidateOrderUnknownSide() {
	order := suite.validOrder()
	order.Side = "HOLD"
	suite.Error(order.Validate())
}

func (suite *OrderTestSuite) TestValidateOrderMissingSymbol() {
	order := suite.validOrder()
	order.Symbol = ""
	suite.Error(order.Validate())
}

func (suite *OrderTestSuite) TestSideDirection() {
	suite.Equal(1.0, SideBuy.Direction())
	suite.Equal(-1.0, SideSell.Direction())
}

func (suite *OrderTestSuite) TestValidateFill() {
	fill := Fill{
		Timestamp: time.Date(2023, 8, 1, 16, 0, 0, 0, time.UTC),
		Symbol:    "AAPL",
		Side:      SideSell,
		Quantity:  10,
		FillPrice: 110,
		Fees:      1.05,
	}
	suite.NoError(fill.Validate())

	fill.FillPrice = 0
	suite.Error(fill.Validate())

	fill.FillPrice = 110
	fill.Fees = -1
	suite.Error(fill.Validate())
}
