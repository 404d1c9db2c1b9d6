package commission_fee

type CommissionFee interface {
	// Calculate the commission fee in USD for a fill at the given price and
	// quantity.
	Calculate(price float64, quantity float64) float64
}

type Broker string

const (
	BrokerInteractiveBroker Broker = "interactive_broker"
	BrokerBasisPoints       Broker = "basis_points"
	BrokerZero              Broker = "zero_commission"
)

var AllBrokers = []any{
	BrokerInteractiveBroker,
	BrokerBasisPoints,
	BrokerZero,
}

func GetCommissionFeeHandler(broker Broker) CommissionFee {
	switch broker {
	case BrokerInteractiveBroker:
		return NewInteractiveBrokerCommissionFee()
	case BrokerBasisPoints:
		return NewBasisPointsCommissionFee(defaultBasisPoints)
	case BrokerZero:
		return NewZeroCommissionFee()
	default:
		return NewZeroCommissionFee()
	}
}
