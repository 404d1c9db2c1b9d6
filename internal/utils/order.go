package utils

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
)

// CalculateMaxQuantity calculates the maximum quantity that can be bought
// with the given balance after commissions.
func CalculateMaxQuantity(balance float64, price float64, commissionFee commission_fee.CommissionFee) float64 {
	if price <= 0 || balance <= 0 {
		return 0
	}

	// Initial rough estimate ignoring fees.
	maxQty := balance / price

	// Iteratively refine by accounting for fees. Usually converges in a
	// couple of rounds.
	for i := 0; i < 10; i++ {
		totalCost := maxQty*price + commissionFee.Calculate(price, maxQty)
		if totalCost <= balance {
			break
		}

		adjustment := balance / totalCost
		maxQty = maxQty * adjustment
	}

	return maxQty
}

// RoundToDecimalPrecision rounds the quantity down to the specified
// decimal precision.
func RoundToDecimalPrecision(quantity float64, decimalPrecision int) float64 {
	multiplier := math.Pow10(decimalPrecision)

	return math.Floor(quantity*multiplier) / multiplier
}

// CalculateOrderQuantityByPercentage calculates the quantity of an order
// spending the given fraction of the balance.
func CalculateOrderQuantityByPercentage(balance float64, price float64, commissionFee commission_fee.CommissionFee, percentage float64) float64 {
	quantity := balance * percentage

	return CalculateMaxQuantity(quantity, price, commissionFee)
}
