package report

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/fee"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
)

// RevenueStatuses are the order statuses whose money counts on the dashboard.
var RevenueStatuses = []string{"paid", "shipped", "completed"}

// OrderRow is the projection of an order the reports read.
type OrderRow struct {
	ID             int64     `db:"id"`
	OrderNumber    string    `db:"order_number"`
	CustomerName   string    `db:"customer_name"`
	CustomerEmail  string    `db:"customer_email"`
	Status         string    `db:"status"`
	DiscountAmount float64   `db:"discount_amount"`
	VoucherCode    *string   `db:"voucher_code"`
	TotalAmount    *float64  `db:"total_amount"`
	DeliveryFee    *float64  `db:"delivery_fee"`
	PaymentMethod  *string   `db:"payment_method"`
	CreatedAt      time.Time `db:"created_at"`
}

func (r OrderRow) financialInput() financials.OrderInput {
	in := financials.OrderInput{
		TotalAmount: financials.AmountFromPtr(r.TotalAmount),
		DeliveryFee: financials.AmountFromPtr(r.DeliveryFee),
	}
	if r.PaymentMethod != nil {
		in.PaymentMethod = *r.PaymentMethod
	}
	return in
}

type Metric string

const (
	MetricOrders      Metric = "orders"
	MetricNetEarnings Metric = "net_earnings"
	MetricFees        Metric = "fees"
	MetricDelivery    Metric = "delivery"
	MetricDiscounts   Metric = "discounts"
)

func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return MetricOrders, nil
	case MetricOrders, MetricNetEarnings, MetricFees, MetricDelivery, MetricDiscounts:
		return m, nil
	}
	return "", errors.NewValidationError("metric must be one of orders, net_earnings, fees, delivery, discounts", errors.ErrCodeInvalidMetric)
}

// OrderLine is one order with its recomputed breakdown.
type OrderLine struct {
	ID             int64                `json:"id"`
	OrderNumber    string               `json:"order_number"`
	CustomerName   string               `json:"customer_name"`
	CustomerEmail  string               `json:"customer_email"`
	Status         string               `json:"status"`
	PaymentMethod  string               `json:"payment_method"`
	VoucherCode    string               `json:"voucher_code,omitempty"`
	DiscountAmount float64              `json:"discount_amount"`
	CreatedAt      time.Time            `json:"created_at"`
	Financials     financials.Breakdown `json:"financials"`
}

type FeeTypeTotals struct {
	FeeType fee.Code          `json:"feeType"`
	Totals  financials.Totals `json:"totals"`
}

type DailyTotals struct {
	Date   string            `json:"date"`
	Totals financials.Totals `json:"totals"`
}

// Summary is the dashboard headline for a window. Every figure is a sum of
// per-order breakdowns.
type Summary struct {
	Window    Window            `json:"window"`
	Totals    financials.Totals `json:"totals"`
	Discounts float64           `json:"discounts"`
	ByFeeType []FeeTypeTotals   `json:"byFeeType"`
	Daily     []DailyTotals     `json:"daily"`
}

type Drilldown struct {
	Window Window      `json:"window"`
	Metric Metric      `json:"metric"`
	Total  float64     `json:"total"`
	Orders []OrderLine `json:"orders"`
}
