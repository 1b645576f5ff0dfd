package voucher

import "time"

type Voucher struct {
	ID             int64      `gorm:"primaryKey"`
	Code           string     `gorm:"column:code;not null;uniqueIndex"`
	Description    string     `gorm:"column:description"`
	DiscountType   string     `gorm:"column:discount_type;not null"`
	DiscountAmount float64    `gorm:"column:discount_amount;not null"`
	MaxDiscount    *float64   `gorm:"column:max_discount"`
	MinOrderAmount *float64   `gorm:"column:min_order_amount"`
	StartDate      *time.Time `gorm:"column:start_date"`
	ExpiryDate     *time.Time `gorm:"column:expiry_date"`
	UsageLimit     *int64     `gorm:"column:usage_limit"`
	TimesUsed      int64      `gorm:"column:times_used;not null;default:0"`
	OncePerUser    bool       `gorm:"column:once_per_user;not null"`
	IsActive       bool       `gorm:"column:is_active;not null"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Voucher) TableName() string {
	return "vouchers"
}

type Usage struct {
	ID        int64     `gorm:"primaryKey"`
	VoucherID int64     `gorm:"column:voucher_id;not null;uniqueIndex:idx_voucher_usage_email"`
	UserEmail string    `gorm:"column:user_email;not null;uniqueIndex:idx_voucher_usage_email"`
	OrderID   *int64    `gorm:"column:order_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Usage) TableName() string {
	return "voucher_usages"
}
