package commission_fee

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionFeeTestSuite struct {
	suite.Suite
}

func TestCommissionFeeSuite(t *testing.T) {
	suite.Run(t, new(CommissionFeeTestSuite))
}

func (suite *CommissionFeeTestSuite) TestZeroCommissionFee() {
	fee := NewZeroCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		price    float64
		quantity float64
		expected float64
	}{
		{"zero quantity", 100, 0, 0},
		{"small quantity", 100, 10, 0},
		{"large quantity", 100, 10000, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.price, tc.quantity)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestInteractiveBrokerCommissionFee() {
	fee := NewInteractiveBrokerCommissionFee()
	suite.NotNil(fee)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"zero quantity", 0, 1.0},             // minimum fee is 1.0
		{"small quantity - min fee", 10, 1.0}, // 0.005 * 10 = 0.05 < 1.0, so min fee applies
		{"quantity at threshold", 200, 1.0},   // 0.005 * 200 = 1.0, so exactly at threshold
		{"large quantity", 1000, 5.0},         // 0.005 * 1000 = 5.0 > 1.0
		{"very large quantity", 10000, 50.0},  // 0.005 * 10000 = 50.0
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(150.0, tc.quantity)
			suite.Equal(tc.expected, result)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestBasisPointsCommissionFee() {
	fee := NewBasisPointsCommissionFee(5.0)
	suite.NotNil(fee)

	tests := []struct {
		name     string
		price    float64
		quantity float64
		expected float64
	}{
		{"zero notional", 100, 0, 0},
		{"round notional", 100, 100, 5.0},  // 10000 * 5bps = 5.0
		{"large notional", 200, 500, 50.0}, // 100000 * 5bps = 50.0
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			result := fee.Calculate(tc.price, tc.quantity)
			suite.InDelta(tc.expected, result, 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestGetCommissionFeeHandler() {
	tests := []struct {
		name           string
		broker         Broker
		testPrice      float64
		testQuantity   float64
		expectedResult float64
	}{
		{
			name:           "interactive broker",
			broker:         BrokerInteractiveBroker,
			testPrice:      100,
			testQuantity:   1000,
			expectedResult: 5.0,
		},
		{
			name:           "basis points",
			broker:         BrokerBasisPoints,
			testPrice:      100,
			testQuantity:   100,
			expectedResult: 5.0,
		},
		{
			name:           "zero commission",
			broker:         BrokerZero,
			testPrice:      100,
			testQuantity:   1000,
			expectedResult: 0.0,
		},
		{
			name:           "unknown broker defaults to zero",
			broker:         Broker("unknown"),
			testPrice:      100,
			testQuantity:   1000,
			expectedResult: 0.0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionFeeHandler(tc.broker)
			suite.NotNil(handler)
			result := handler.Calculate(tc.testPrice, tc.testQuantity)
			suite.InDelta(tc.expectedResult, result, 1e-9)
		})
	}
}

func (suite *CommissionFeeTestSuite) TestAllBrokers() {
	suite.Len(AllBrokers, 3)
	suite.Contains(AllBrokers, BrokerInteractiveBroker)
	suite.Contains(AllBrokers, BrokerBasisPoints)
	suite.Contains(AllBrokers, BrokerZero)
}
