package product

import "time"

type Product struct {
	ID          int64     `gorm:"primaryKey"`
	SKU         string    `gorm:"column:sku;not null;uniqueIndex"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	Category    string    `gorm:"column:category;index"`
	Price       float64   `gorm:"column:price;not null"`
	Stock       int       `gorm:"column:stock;not null"`
	ImageURL    *string   `gorm:"column:image_url"`
	IsActive    bool      `gorm:"column:is_active;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
