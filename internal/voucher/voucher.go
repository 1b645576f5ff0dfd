package voucher

import (
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/petshop-commerce/internal/core/money"
	voucherDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/voucher"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

type Voucher struct {
	ID             int64        `json:"id"`
	Code           string       `json:"code"`
	Description    string       `json:"description,omitempty"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountAmount float64      `json:"discount_amount"`
	MaxDiscount    *float64     `json:"max_discount,omitempty"`
	MinOrderAmount *float64     `json:"min_order_amount,omitempty"`
	StartDate      *time.Time   `json:"start_date,omitempty"`
	ExpiryDate     *time.Time   `json:"expiry_date,omitempty"`
	UsageLimit     *int64       `json:"usage_limit,omitempty"`
	TimesUsed      int64        `json:"times_used"`
	OncePerUser    bool         `json:"once_per_user"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NormalizeCode is the stored form of a code; lookups compare case-insensitively.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NormalizeEmail is the form usage rows are recorded under.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (v *Voucher) HasStarted(now time.Time) bool {
	return v.StartDate == nil || !now.Before(*v.StartDate)
}

func (v *Voucher) HasExpired(now time.Time) bool {
	return v.ExpiryDate != nil && now.After(*v.ExpiryDate)
}

func (v *Voucher) UsageExhausted() bool {
	return v.UsageLimit != nil && v.TimesUsed >= *v.UsageLimit
}

func (v *Voucher) MeetsMinimum(subtotal float64) bool {
	return v.MinOrderAmount == nil || subtotal >= *v.MinOrderAmount
}

// Discount computes the amount taken off subtotal. The result never exceeds
// subtotal and is never negative.
func (v *Voucher) Discount(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}

	var discount float64
	switch v.DiscountType {
	case DiscountPercentage:
		discount = subtotal * v.DiscountAmount / 100
		if v.MaxDiscount != nil && discount > *v.MaxDiscount {
			discount = *v.MaxDiscount
		}
	default:
		discount = v.DiscountAmount
	}

	discount = money.Round2(discount)
	discount = math.Min(discount, subtotal)
	return math.Max(discount, 0)
}

func ToDataModel(v *Voucher) *voucherDatamodel.Voucher {
	return &voucherDatamodel.Voucher{
		ID:             v.ID,
		Code:           v.Code,
		Description:    v.Description,
		DiscountType:   string(v.DiscountType),
		DiscountAmount: v.DiscountAmount,
		MaxDiscount:    v.MaxDiscount,
		MinOrderAmount: v.MinOrderAmount,
		StartDate:      v.StartDate,
		ExpiryDate:     v.ExpiryDate,
		UsageLimit:     v.UsageLimit,
		TimesUsed:      v.TimesUsed,
		OncePerUser:    v.OncePerUser,
		IsActive:       v.IsActive,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

func FromDataModel(v *voucherDatamodel.Voucher) *Voucher {
	return &Voucher{
		ID:             v.ID,
		Code:           v.Code,
		Description:    v.Description,
		DiscountType:   DiscountType(v.DiscountType),
		DiscountAmount: v.DiscountAmount,
		MaxDiscount:    v.MaxDiscount,
		MinOrderAmount: v.MinOrderAmount,
		StartDate:      v.StartDate,
		ExpiryDate:     v.ExpiryDate,
		UsageLimit:     v.UsageLimit,
		TimesUsed:      v.TimesUsed,
		OncePerUser:    v.OncePerUser,
		IsActive:       v.IsActive,
		CreatedAt:      v.CreatedAt,
		UpdatedAt:      v.UpdatedAt,
	}
}

type Usage struct {
	ID        int64     `json:"id"`
	VoucherID int64     `json:"voucher_id"`
	UserEmail string    `json:"user_email"`
	OrderID   *int64    `json:"order_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func UsageFromDataModel(u *voucherDatamodel.Usage) *Usage {
	return &Usage{
		ID:        u.ID,
		VoucherID: u.VoucherID,
		UserEmail: u.UserEmail,
		OrderID:   u.OrderID,
		CreatedAt: u.CreatedAt,
	}
}
