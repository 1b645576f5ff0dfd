package postgres

import (
	"context"
	stderrors "errors"
	"time"

	orderDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/order"
	productDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/product"
	"github.com/frahmantamala/petshop-commerce/internal/order"
	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) order.RepositoryAPI {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *orderDatamodel.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range o.Items {
			res := tx.Model(&productDatamodel.Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Updates(map[string]interface{}{
					"stock":      gorm.Expr("stock - ?", item.Quantity),
					"updated_at": time.Now(),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return order.ErrInsufficientStock
			}
		}
		return tx.Create(o).Error
	})
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*orderDatamodel.Order, error) {
	var o orderDatamodel.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&o).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*orderDatamodel.Order, error) {
	var o orderDatamodel.Order
	err := r.db.WithContext(ctx).Preload("Items").Where("order_number = ?", orderNumber).First(&o).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) List(ctx context.Context, filter order.ListFilter) ([]*orderDatamodel.Order, error) {
	var orders []*orderDatamodel.Order
	q := r.db.WithContext(ctx).Preload("Items")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Email != "" {
		q = q.Where("customer_email = ?", filter.Email)
	}
	err := q.Order("created_at DESC, id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) Transition(ctx context.Context, id int64, from, to string, changes map[string]interface{}, restock bool) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range changes {
		updates[k] = v
	}

	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&orderDatamodel.Order{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		applied = true

		if !restock {
			return nil
		}
		var items []orderDatamodel.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			err := tx.Model(&productDatamodel.Product{}).
				Where("id = ?", item.ProductID).
				Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}
