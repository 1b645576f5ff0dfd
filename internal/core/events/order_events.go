package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeOrderCreated       = "order.created"
	EventTypeOrderStatusChanged = "order.status_changed"
	EventTypePaymentCompleted   = "payment.completed"
	EventTypePaymentFailed      = "payment.failed"
	EventTypeVoucherRedeemed    = "voucher.redeemed"
)

// AllTypes lists every event type the storefront publishes.
var AllTypes = []string{
	EventTypeOrderCreated,
	EventTypeOrderStatusChanged,
	EventTypePaymentCompleted,
	EventTypePaymentFailed,
	EventTypeVoucherRedeemed,
}

// Keyed events carry the key used to partition them downstream.
type Keyed interface {
	PartitionKey() string
}

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

type OrderCreatedEvent struct {
	BaseEvent
	OrderID        int64   `json:"order_id"`
	OrderNumber    string  `json:"order_number"`
	CustomerEmail  string  `json:"customer_email"`
	TotalAmount    float64 `json:"total_amount"`
	DeliveryFee    float64 `json:"delivery_fee"`
	DiscountAmount float64 `json:"discount_amount"`
	VoucherCode    string  `json:"voucher_code,omitempty"`
}

func NewOrderCreatedEvent(orderID int64, orderNumber, email string, totalAmount, deliveryFee, discount float64, voucherCode string) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseEvent: newBase(EventTypeOrderCreated, map[string]interface{}{
			"order_id":        orderID,
			"order_number":    orderNumber,
			"customer_email":  email,
			"total_amount":    totalAmount,
			"delivery_fee":    deliveryFee,
			"discount_amount": discount,
			"voucher_code":    voucherCode,
		}),
		OrderID:        orderID,
		OrderNumber:    orderNumber,
		CustomerEmail:  email,
		TotalAmount:    totalAmount,
		DeliveryFee:    deliveryFee,
		DiscountAmount: discount,
		VoucherCode:    voucherCode,
	}
}

func (e *OrderCreatedEvent) PartitionKey() string { return e.OrderNumber }

type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID     int64  `json:"order_id"`
	OrderNumber string `json:"order_number"`
	From        string `json:"from"`
	To          string `json:"to"`
}

func NewOrderStatusChangedEvent(orderID int64, orderNumber, from, to string) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent: newBase(EventTypeOrderStatusChanged, map[string]interface{}{
			"order_id":     orderID,
			"order_number": orderNumber,
			"from":         from,
			"to":           to,
		}),
		OrderID:     orderID,
		OrderNumber: orderNumber,
		From:        from,
		To:          to,
	}
}

func (e *OrderStatusChangedEvent) PartitionKey() string { return e.OrderNumber }

type PaymentCompletedEvent struct {
	BaseEvent
	OrderID          int64  `json:"order_id"`
	OrderNumber      string `json:"order_number"`
	PaymentMethod    string `json:"payment_method"`
	GatewayPaymentID string `json:"gateway_payment_id"`
}

func NewPaymentCompletedEvent(orderID int64, orderNumber, paymentMethod, gatewayPaymentID string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: newBase(EventTypePaymentCompleted, map[string]interface{}{
			"order_id":           orderID,
			"order_number":       orderNumber,
			"payment_method":     paymentMethod,
			"gateway_payment_id": gatewayPaymentID,
		}),
		OrderID:          orderID,
		OrderNumber:      orderNumber,
		PaymentMethod:    paymentMethod,
		GatewayPaymentID: gatewayPaymentID,
	}
}

func (e *PaymentCompletedEvent) PartitionKey() string { return e.OrderNumber }

type PaymentFailedEvent struct {
	BaseEvent
	OrderID       int64  `json:"order_id"`
	OrderNumber   string `json:"order_number"`
	FailureReason string `json:"failure_reason"`
}

func NewPaymentFailedEvent(orderID int64, orderNumber, failureReason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: newBase(EventTypePaymentFailed, map[string]interface{}{
			"order_id":       orderID,
			"order_number":   orderNumber,
			"failure_reason": failureReason,
		}),
		OrderID:       orderID,
		OrderNumber:   orderNumber,
		FailureReason: failureReason,
	}
}

func (e *PaymentFailedEvent) PartitionKey() string { return e.OrderNumber }

type VoucherRedeemedEvent struct {
	BaseEvent
	VoucherID int64  `json:"voucher_id"`
	Code      string `json:"code"`
	UserEmail string `json:"user_email"`
	OrderID   *int64 `json:"order_id,omitempty"`
}

func NewVoucherRedeemedEvent(voucherID int64, code, email string, orderID *int64) *VoucherRedeemedEvent {
	return &VoucherRedeemedEvent{
		BaseEvent: newBase(EventTypeVoucherRedeemed, map[string]interface{}{
			"voucher_id": voucherID,
			"code":       code,
			"user_email": email,
			"order_id":   orderID,
		}),
		VoucherID: voucherID,
		Code:      code,
		UserEmail: email,
		OrderID:   orderID,
	}
}

func (e *VoucherRedeemedEvent) PartitionKey() string { return e.Code }
