package commission

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is the slice of an order the commission engine needs for one item
type OrderLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// Net returns the line net, floored at zero when the item discount
// exceeds the gross amount
func (l OrderLine) Net() decimal.Decimal {
	net := l.Quantity.Mul(l.UnitPrice).Sub(l.Discount)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// OrderSnapshot carries the order figures commission calculation reads.
// It is a projection of the sales order, not the order aggregate itself.
type OrderSnapshot struct {
	OrderID        uuid.UUID       `json:"order_id"`
	SellerID       *uuid.UUID      `json:"seller_id,omitempty"`
	ReferenceDate  time.Time       `json:"reference_date"`
	HeaderDiscount decimal.Decimal `json:"header_discount"`
	Lines          []OrderLine     `json:"lines"`
}

// ItemsNetTotal sums the net of every line
func (o OrderSnapshot) ItemsNetTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Net())
	}
	return total
}

// ProductIDs returns the distinct product ids across all lines
func (o OrderSnapshot) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(o.Lines))
	ids := make([]uuid.UUID, 0, len(o.Lines))
	for _, line := range o.Lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}
