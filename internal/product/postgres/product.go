package postgres

import (
	"context"
	stderrors "errors"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	productDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/product"
	"github.com/frahmantamala/petshop-commerce/internal/product"
	"gorm.io/gorm"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) product.RepositoryAPI {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, activeOnly bool) ([]*productDatamodel.Product, error) {
	var products []*productDatamodel.Product
	q := r.db.WithContext(ctx).Order("category ASC, name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error) {
	var p productDatamodel.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]*productDatamodel.Product, error) {
	var products []*productDatamodel.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *ProductRepository) Create(ctx context.Context, p *productDatamodel.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *ProductRepository) Update(ctx context.Context, p *productDatamodel.Product) error {
	return translate(r.db.WithContext(ctx).Save(p).Error)
}

func (r *ProductRepository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.db.WithContext(ctx).Model(&productDatamodel.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": active, "updated_at": time.Now()}).Error
}

func translate(err error) error {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.ErrSKUTaken
	}
	return err
}
