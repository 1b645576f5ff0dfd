package order

import (
	"time"

	orderDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/order"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
)

type Status string

const (
	StatusPendingPayment Status = "pending_payment"
	StatusPaid           Status = "paid"
	StatusShipped        Status = "shipped"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
	StatusPaymentFailed  Status = "payment_failed"
)

var AllStatuses = []Status{
	StatusPendingPayment,
	StatusPaid,
	StatusShipped,
	StatusCompleted,
	StatusCancelled,
	StatusPaymentFailed,
}

var transitions = map[Status][]Status{
	StatusPendingPayment: {StatusPaid, StatusPaymentFailed, StatusCancelled},
	StatusPaymentFailed:  {StatusPendingPayment, StatusPaid, StatusCancelled},
	StatusPaid:           {StatusShipped, StatusCancelled},
	StatusShipped:        {StatusCompleted},
}

func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsSettled reports whether payment has been received for the order.
func (s Status) IsSettled() bool {
	return s == StatusPaid || s == StatusShipped || s == StatusCompleted
}

type Item struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	SKU         string  `json:"sku,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
}

type Order struct {
	ID              int64      `json:"id"`
	OrderNumber     string     `json:"order_number"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerPhone   string     `json:"customer_phone,omitempty"`
	ShippingAddress string     `json:"shipping_address,omitempty"`
	ShippingState   string     `json:"shipping_state,omitempty"`
	Items           []Item     `json:"items,omitempty"`
	Subtotal        float64    `json:"subtotal"`
	VoucherID       *int64     `json:"voucher_id,omitempty"`
	VoucherCode     *string    `json:"voucher_code,omitempty"`
	DiscountAmount  float64    `json:"discount_amount"`
	TotalAmount     *float64   `json:"total_amount"`
	DeliveryFee     *float64   `json:"delivery_fee"`
	PaymentMethod   *string    `json:"payment_method"`
	Status          Status     `json:"status"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// FinancialInput is the only way order figures reach the aggregator.
func (o *Order) FinancialInput() financials.OrderInput {
	in := financials.OrderInput{
		TotalAmount: financials.AmountFromPtr(o.TotalAmount),
		DeliveryFee: financials.AmountFromPtr(o.DeliveryFee),
	}
	if o.PaymentMethod != nil {
		in.PaymentMethod = *o.PaymentMethod
	}
	return in
}

// Detail pairs an order with its financial breakdown.
type Detail struct {
	*Order
	Financials financials.Breakdown `json:"financials"`
}

func ToDataModel(o *Order) *orderDatamodel.Order {
	items := make([]orderDatamodel.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderDatamodel.OrderItem{
			ID:          it.ID,
			OrderID:     o.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		})
	}
	return &orderDatamodel.Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		ShippingState:   o.ShippingState,
		Subtotal:        o.Subtotal,
		VoucherID:       o.VoucherID,
		VoucherCode:     o.VoucherCode,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		DeliveryFee:     o.DeliveryFee,
		PaymentMethod:   o.PaymentMethod,
		Status:          string(o.Status),
		PaidAt:          o.PaidAt,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func FromDataModel(o *orderDatamodel.Order) *Order {
	items := make([]Item, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, Item{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			SKU:         it.SKU,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			LineTotal:   it.LineTotal,
		})
	}
	return &Order{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: o.ShippingAddress,
		ShippingState:   o.ShippingState,
		Items:           items,
		Subtotal:        o.Subtotal,
		VoucherID:       o.VoucherID,
		VoucherCode:     o.VoucherCode,
		DiscountAmount:  o.DiscountAmount,
		TotalAmount:     o.TotalAmount,
		DeliveryFee:     o.DeliveryFee,
		PaymentMethod:   o.PaymentMethod,
		Status:          Status(o.Status),
		PaidAt:          o.PaidAt,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
