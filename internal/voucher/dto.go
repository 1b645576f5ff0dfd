package voucher

import (
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/core/common/validation"
)

// ValidateVoucherRequest is sent by the storefront when a customer applies a
// code at checkout.
type ValidateVoucherRequest struct {
	Code     string  `json:"code"`
	Email    string  `json:"email"`
	Subtotal float64 `json:"subtotal"`
}

func (r ValidateVoucherRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("code", r.Code).Required().MaxLength(64)
	v.Field("email", r.Email).Email()
	v.Field("subtotal", r.Subtotal).MinFloat(0, errors.ErrCodeInvalidAmount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ValidateVoucherResponse struct {
	Code     string  `json:"code"`
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Reason   Reason  `json:"reason,omitempty"`
	Message  string  `json:"message,omitempty"`
}

type CreateVoucherRequest struct {
	Code           string       `json:"code"`
	Description    string       `json:"description"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountAmount float64      `json:"discount_amount"`
	MaxDiscount    *float64     `json:"max_discount,omitempty"`
	MinOrderAmount *float64     `json:"min_order_amount,omitempty"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	ExpiryDate     *time.Time   `json:"expiry_date,omitempty"`
	UsageLimit     *int64       `json:"usage_limit,omitempty"`
	OncePerUser    bool         `json:"once_per_user"`
	IsActive       *bool        `json:"is_active,omitempty"`
}

func (r CreateVoucherRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("code", r.Code).Required().MinLength(3).MaxLength(64)
	v.Field("description", r.Description).MaxLength(255)
	v.Field("discount_type", string(r.DiscountType)).Required().
		OneOf(errors.ErrCodeInvalidDiscountType, string(DiscountFixed), string(DiscountPercentage))
	v.Field("discount_amount", r.DiscountAmount).MinFloat(0.01, errors.ErrCodeInvalidAmount)
	if r.DiscountType == DiscountPercentage {
		v.Field("discount_amount", r.DiscountAmount).MaxFloat(100, errors.ErrCodeInvalidAmount)
	}
	v.Field("max_discount", r.MaxDiscount).MinFloat(0.01, errors.ErrCodeInvalidAmount)
	v.Field("min_order_amount", r.MinOrderAmount).MinFloat(0, errors.ErrCodeInvalidAmount)
	if r.UsageLimit != nil {
		v.Field("usage_limit", *r.UsageLimit).MinInt(1, errors.ErrCodeValidationFailed)
	}
	v.Field("expiry_date", r.ExpiryDate).Custom(func(interface{}) *errors.AppError {
		if r.StartDate != nil && r.ExpiryDate != nil && !r.ExpiryDate.After(*r.StartDate) {
			return errors.NewValidationFieldError("expiry_date", "expiry_date must be after start_date", errors.ErrCodeInvalidVoucherWindow)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (r CreateVoucherRequest) ToVoucher() *Voucher {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return &Voucher{
		Code:           NormalizeCode(r.Code),
		Description:    r.Description,
		DiscountType:   r.DiscountType,
		DiscountAmount: r.DiscountAmount,
		MaxDiscount:    r.MaxDiscount,
		MinOrderAmount: r.MinOrderAmount,
		StartDate:      r.StartDate,
		ExpiryDate:     r.ExpiryDate,
		UsageLimit:     r.UsageLimit,
		OncePerUser:    r.OncePerUser,
		IsActive:       active,
	}
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type VouchersResponse struct {
	Vouchers []*Voucher `json:"vouchers"`
}

type UsagesResponse struct {
	Usages []*Usage `json:"usages"`
}
