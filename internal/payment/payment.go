package payment

import (
	"encoding/json"
	"strings"
	"time"

	paymentDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/payment"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
	StatusFailed  = "failed"
)

// MapExternalStatus folds the gateway's status vocabulary into ours. Unknown
// statuses are treated as still pending.
func MapExternalStatus(externalStatus string) string {
	switch strings.ToLower(strings.TrimSpace(externalStatus)) {
	case "success", "paid", "completed":
		return StatusPaid
	case "failed", "cancelled", "expired":
		return StatusFailed
	default:
		return StatusPending
	}
}

type Payment struct {
	ID               int64           `json:"id"`
	OrderID          int64           `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	Status           string          `json:"status"`
	ExternalStatus   string          `json:"external_status"`
	PaymentMethod    *string         `json:"payment_method,omitempty"`
	FailureReason    *string         `json:"failure_reason,omitempty"`
	GatewayResponse  json.RawMessage `json:"gateway_response,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func FromDataModel(p *paymentDatamodel.Payment) *Payment {
	return &Payment{
		ID:               p.ID,
		OrderID:          p.OrderID,
		OrderNumber:      p.OrderNumber,
		GatewayPaymentID: p.GatewayPaymentID,
		Status:           p.Status,
		ExternalStatus:   p.ExternalStatus,
		PaymentMethod:    p.PaymentMethod,
		FailureReason:    p.FailureReason,
		GatewayResponse:  p.GatewayResponse,
		CreatedAt:        p.CreatedAt,
	}
}
