package postgres

import (
	"context"

	paymentDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/payment"
	"github.com/frahmantamala/petshop-commerce/internal/payment"
	"gorm.io/gorm"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) payment.RepositoryAPI {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *paymentDatamodel.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PaymentRepository) ListByOrderID(ctx context.Context, orderID int64) ([]*paymentDatamodel.Payment, error) {
	var payments []*paymentDatamodel.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at ASC, id ASC").Find(&payments).Error
	return payments, err
}
