package commission_fee

// 5 bps of notional, a common all-in estimate for US equity execution.
const defaultBasisPoints = 5.0

// BasisPointsCommissionFee charges a fraction of the fill notional.
type BasisPointsCommissionFee struct {
	basisPoints float64
}

func NewBasisPointsCommissionFee(basisPoints float64) CommissionFee {
	return &BasisPointsCommissionFee{basisPoints: basisPoints}
}

func (c *BasisPointsCommissionFee) Calculate(price float64, quantity float64) float64 {
	return price * quantity * c.basisPoints / 10000.0
}
