package product

import (
	"strings"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/core/common/validation"
	"github.com/frahmantamala/petshop-commerce/internal/core/money"
)

// ProductRequest is the body of both create and full update calls.
type ProductRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (r ProductRequest) Validate() error {
	v := validation.NewValidator()
	v.Field("sku", r.SKU).Required().MaxLength(64)
	v.Field("name", r.Name).Required().MaxLength(200)
	v.Field("description", r.Description).MaxLength(2000)
	v.Field("category", r.Category).MaxLength(100)
	v.Field("price", r.Price).MinFloat(0.01, errors.ErrCodeInvalidAmount)
	v.Field("stock", r.Stock).MinInt(0, errors.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (r ProductRequest) apply(p *Product) {
	p.SKU = strings.ToUpper(strings.TrimSpace(r.SKU))
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.Category = strings.ToLower(strings.TrimSpace(r.Category))
	p.Price = money.Round2(r.Price)
	p.Stock = r.Stock
	p.ImageURL = r.ImageURL
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type ProductsResponse struct {
	Products []*Product `json:"products"`
}
