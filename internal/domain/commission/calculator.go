package commission

import (
	"github.com/shopspring/decimal"
)

// Calculation is the outcome of running the commission rules over an order
type Calculation struct {
	ItemsNetTotal    decimal.Decimal
	FinalBase        decimal.Decimal
	DiscountFactor   decimal.Decimal
	CommissionAmount decimal.Decimal
	EffectiveRate    decimal.Decimal
	LinesWithRule    int
	LinesWithoutRule int
}

// Calculate resolves a rule per order line, sums the raw per-line
// contributions and scales the total by the header-discount factor
// finalBase/itemsNetTotal so header discounts reduce commission
// proportionally. A fully discounted order yields zero commission.
func Calculate(order OrderSnapshot, candidates []CommissionRule) Calculation {
	itemsNetTotal := order.ItemsNetTotal()

	finalBase := itemsNetTotal.Sub(order.HeaderDiscount)
	if finalBase.IsNegative() {
		finalBase = decimal.Zero
	}

	factor := decimal.Zero
	if itemsNetTotal.IsPositive() {
		factor = finalBase.Div(itemsNetTotal)
	}

	calc := Calculation{
		ItemsNetTotal:  itemsNetTotal,
		FinalBase:      finalBase,
		DiscountFactor: factor,
	}

	raw := decimal.Zero
	for _, line := range order.Lines {
		var rule *CommissionRule
		if order.SellerID != nil {
			rule = ResolveRule(candidates, *order.SellerID, line.ProductID)
		}
		if rule == nil {
			calc.LinesWithoutRule++
			continue
		}
		calc.LinesWithRule++
		raw = raw.Add(rule.Contribution(line.Net(), line.Quantity))
	}

	calc.CommissionAmount = raw.Mul(factor)
	if calc.CommissionAmount.IsNegative() {
		calc.CommissionAmount = decimal.Zero
	}
	if finalBase.IsPositive() {
		calc.EffectiveRate = calc.CommissionAmount.Div(finalBase).Mul(oneHundred)
	}
	return calc
}
