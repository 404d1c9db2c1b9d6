package commission_fee

const (
	interactiveBrokerPerShare = 0.005
	interactiveBrokerMinimum  = 1.0
)

// InteractiveBrokerCommissionFee models the IBKR fixed-rate schedule for US
// stocks: half a cent per share with a one dollar minimum per order.
type InteractiveBrokerCommissionFee struct {
}

func NewInteractiveBrokerCommissionFee() CommissionFee {
	return &InteractiveBrokerCommissionFee{}
}

func (c *InteractiveBrokerCommissionFee) Calculate(_ float64, quantity float64) float64 {
	fee := interactiveBrokerPerShare * quantity
	if fee < interactiveBrokerMinimum {
		return interactiveBrokerMinimum
	}

	return fee
}
