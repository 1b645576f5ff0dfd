package payment

import (
	"encoding/json"
	"time"
)

// Payment is one gateway callback as received. Rows are append-only; the
// order row carries the resulting status.
type Payment struct {
	ID               int64           `gorm:"primaryKey"`
	OrderID          int64           `gorm:"column:order_id;not null;index"`
	OrderNumber      string          `gorm:"column:order_number;not null"`
	GatewayPaymentID string          `gorm:"column:gateway_payment_id"`
	Status           string          `gorm:"column:status;not null"`
	ExternalStatus   string          `gorm:"column:external_status"`
	PaymentMethod    *string         `gorm:"column:payment_method"`
	FailureReason    *string         `gorm:"column:failure_reason"`
	GatewayResponse  json.RawMessage `gorm:"column:gateway_response;type:jsonb"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
