package payment

import (
	"github.com/frahmantamala/petshop-commerce/internal/core/common/validation"
)

// CallbackRequest is what the gateway posts after a payment attempt.
// PaymentMethod is the gateway's human-readable label such as "Touch n Go"
// or "FPX"; it is stored on the order and later drives fee classification.
type CallbackRequest struct {
	OrderNumber      string `json:"order_number"`
	Status           string `json:"status"`
	PaymentMethod    string `json:"payment_method"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	FailureReason    string `json:"failure_reason,omitempty"`
}

func (r CallbackRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("order_number", r.OrderNumber).Required().MaxLength(64)
	v.Field("status", r.Status).Required().MaxLength(32)
	v.Field("payment_method", r.PaymentMethod).MaxLength(64)
	v.Field("gateway_payment_id", r.GatewayPaymentID).MaxLength(128)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type CallbackResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	OrderNumber string `json:"order_number"`
	OrderStatus string `json:"order_status"`
	Changed     bool   `json:"changed"`
}

type PaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}
