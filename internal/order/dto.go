package order

import (
	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/core/common/validation"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
)

type CheckoutItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type CheckoutRequest struct {
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerPhone   string         `json:"customer_phone"`
	ShippingAddress string         `json:"shipping_address"`
	ShippingState   string         `json:"shipping_state"`
	Items           []CheckoutItem `json:"items"`
	VoucherCode     string         `json:"voucher_code,omitempty"`
	PaymentMethod   string         `json:"payment_method,omitempty"`
}

func (r CheckoutRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.ErrEmptyCart
	}

	v := validation.NewValidator()
	v.Field("customer_name", r.CustomerName).Required().MaxLength(120)
	v.Field("customer_email", r.CustomerEmail).Required().Email()
	v.Field("customer_phone", r.CustomerPhone).MaxLength(32)
	v.Field("shipping_address", r.ShippingAddress).Required().MaxLength(500)
	v.Field("shipping_state", r.ShippingState).Required().MaxLength(64)
	v.Field("voucher_code", r.VoucherCode).MaxLength(64)
	for _, item := range r.Items {
		v.Field("items.product_id", item.ProductID).MinInt(1, errors.ErrCodeInvalidID)
		v.Field("items.quantity", item.Quantity).MinInt(1, errors.ErrCodeValidationFailed).MaxInt(999, errors.ErrCodeValidationFailed)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// VoucherOutcome tells the storefront what happened to the code it sent.
type VoucherOutcome struct {
	Code     string         `json:"code"`
	Applied  bool           `json:"applied"`
	Discount float64        `json:"discount"`
	Reason   voucher.Reason `json:"reason,omitempty"`
	Message  string         `json:"message,omitempty"`
}

type CheckoutResponse struct {
	Detail
	Voucher *VoucherOutcome `json:"voucher,omitempty"`
}

type ListFilter struct {
	Status string
	Email  string
	Limit  int
	Offset int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (f ListFilter) normalized() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrdersResponse struct {
	Orders []Detail `json:"orders"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}
