// Package financials derives the per-order money breakdown shown on every
// reporting surface. Dashboard summaries, drill-downs, CSV exports, order detail
// and order lists all call Aggregator.Calculate once per order; no other package
// computes gateway fees for an order.
package financials

import (
	"github.com/frahmantamala/petshop-commerce/internal/core/money"
	"github.com/frahmantamala/petshop-commerce/internal/fee"
)

// OrderInput is the slice of an order row the breakdown depends on.
// TotalAmount is the product subtotal before delivery.
type OrderInput struct {
	TotalAmount   Amount `json:"total_amount"`
	DeliveryFee   Amount `json:"delivery_fee"`
	PaymentMethod string `json:"payment_method"`
}

// Breakdown is recomputed on demand and never persisted. Every monetary field is
// rounded to cents on its own.
type Breakdown struct {
	ProductTotal               float64  `json:"productTotal"`
	DeliveryFee                float64  `json:"deliveryFee"`
	OrderTotal                 float64  `json:"orderTotal"`
	SenangPayFee               float64  `json:"senangPayFee"`
	SenangPayFeeType           fee.Code `json:"senangPayFeeType"`
	SenangPayFeePercentage     float64  `json:"senangPayFeePercentage"`
	SenangPayFeeMinimum        float64  `json:"senangPayFeeMinimum"`
	SenangPayFeeCalculatedFrom string   `json:"senangPayFeeCalculatedFrom"`
	OtherFees                  float64  `json:"otherFees"`
	TotalFees                  float64  `json:"totalFees"`
	NetEarnings                float64  `json:"netEarnings"`
}

type Aggregator struct {
	calc *fee.Calculator
}

func NewAggregator(calc *fee.Calculator) *Aggregator {
	return &Aggregator{calc: calc}
}

// Calculator exposes the fee calculator the aggregator was built with.
func (a *Aggregator) Calculator() *fee.Calculator {
	return a.calc
}

// Calculate never fails: a missing or malformed total counts as 0 and a
// missing delivery fee as the delivery table default. The gateway fee is
// charged on the order total including delivery.
func (a *Aggregator) Calculate(in OrderInput) Breakdown {
	productTotal := in.TotalAmount.Or(0)
	deliveryFee := in.DeliveryFee.Or(a.calc.DefaultDeliveryFee())
	orderTotal := productTotal + deliveryFee

	feeType := fee.MapPaymentMethodToFeeType(in.PaymentMethod)
	gateway := a.calc.CalculateFee(orderTotal, string(feeType))

	otherFees := 0.0
	totalFees := gateway.Fee + otherFees
	netEarnings := orderTotal - totalFees

	return Breakdown{
		ProductTotal:               money.Round2(productTotal),
		DeliveryFee:                money.Round2(deliveryFee),
		OrderTotal:                 money.Round2(orderTotal),
		SenangPayFee:               gateway.Fee,
		SenangPayFeeType:           gateway.FeeType,
		SenangPayFeePercentage:     gateway.Percentage,
		SenangPayFeeMinimum:        gateway.Minimum,
		SenangPayFeeCalculatedFrom: gateway.CalculatedFrom,
		OtherFees:                  money.Round2(otherFees),
		TotalFees:                  money.Round2(totalFees),
		NetEarnings:                money.Round2(netEarnings),
	}
}
