package order

import "time"

// Order stores what the customer was charged. TotalAmount is the product
// subtotal after discount and excludes delivery; DeliveryFee and PaymentMethod
// stay nullable so legacy rows fall back to defaults when reported.
type Order struct {
	ID              int64       `gorm:"primaryKey"`
	OrderNumber     string      `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName    string      `gorm:"column:customer_name;not null"`
	CustomerEmail   string      `gorm:"column:customer_email;not null;index"`
	CustomerPhone   string      `gorm:"column:customer_phone"`
	ShippingAddress string      `gorm:"column:shipping_address"`
	ShippingState   string      `gorm:"column:shipping_state"`
	Subtotal        float64     `gorm:"column:subtotal;not null"`
	VoucherID       *int64      `gorm:"column:voucher_id"`
	VoucherCode     *string     `gorm:"column:voucher_code"`
	DiscountAmount  float64     `gorm:"column:discount_amount;not null"`
	TotalAmount     *float64    `gorm:"column:total_amount"`
	DeliveryFee     *float64    `gorm:"column:delivery_fee"`
	PaymentMethod   *string     `gorm:"column:payment_method"`
	Status          string      `gorm:"column:status;not null;index"`
	PaidAt          *time.Time  `gorm:"column:paid_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID          int64     `gorm:"primaryKey"`
	OrderID     int64     `gorm:"column:order_id;not null;index"`
	ProductID   int64     `gorm:"column:product_id;not null"`
	ProductName string    `gorm:"column:product_name;not null"`
	SKU         string    `gorm:"column:sku"`
	UnitPrice   float64   `gorm:"column:unit_price;not null"`
	Quantity    int       `gorm:"column:quantity;not null"`
	LineTotal   float64   `gorm:"column:line_total;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
