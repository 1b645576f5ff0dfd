package financials

import (
	"github.com/frahmantamala/petshop-commerce/internal/core/money"
	"github.com/shopspring/decimal"
)

// Totals is the sum of per-order breakdowns. Each order is rounded before it is
// added, so totals can drift from a single global rounding by up to a cent per
// order; dashboards rely on that.
type Totals struct {
	Orders       int     `json:"orders"`
	ProductTotal float64 `json:"productTotal"`
	DeliveryFee  float64 `json:"deliveryFee"`
	OrderTotal   float64 `json:"orderTotal"`
	SenangPayFee float64 `json:"senangPayFee"`
	OtherFees    float64 `json:"otherFees"`
	TotalFees    float64 `json:"totalFees"`
	NetEarnings  float64 `json:"netEarnings"`
}

// Accumulator sums breakdowns with exact decimal arithmetic.
type Accumulator struct {
	orders   int
	product  decimal.Decimal
	delivery decimal.Decimal
	order    decimal.Decimal
	gateway  decimal.Decimal
	other    decimal.Decimal
	fees     decimal.Decimal
	net      decimal.Decimal
}

func (acc *Accumulator) Add(b Breakdown) {
	acc.orders++
	acc.product = acc.product.Add(money.Decimal(b.ProductTotal))
	acc.delivery = acc.delivery.Add(money.Decimal(b.DeliveryFee))
	acc.order = acc.order.Add(money.Decimal(b.OrderTotal))
	acc.gateway = acc.gateway.Add(money.Decimal(b.SenangPayFee))
	acc.other = acc.other.Add(money.Decimal(b.OtherFees))
	acc.fees = acc.fees.Add(money.Decimal(b.TotalFees))
	acc.net = acc.net.Add(money.Decimal(b.NetEarnings))
}

func (acc *Accumulator) Totals() Totals {
	return Totals{
		Orders:       acc.orders,
		ProductTotal: money.Float(acc.product),
		DeliveryFee:  money.Float(acc.delivery),
		OrderTotal:   money.Float(acc.order),
		SenangPayFee: money.Float(acc.gateway),
		OtherFees:    money.Float(acc.other),
		TotalFees:    money.Float(acc.fees),
		NetEarnings:  money.Float(acc.net),
	}
}

// Sum totals a set of breakdowns.
func Sum(breakdowns ...Breakdown) Totals {
	var acc Accumulator
	for _, b := range breakdowns {
		acc.Add(b)
	}
	return acc.Totals()
}
