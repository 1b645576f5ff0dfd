package product

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	productDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/product"
)

type RepositoryAPI interface {
	List(ctx context.Context, activeOnly bool) ([]*productDatamodel.Product, error)
	GetByID(ctx context.Context, id int64) (*productDatamodel.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*productDatamodel.Product, error)
	Create(ctx context.Context, p *productDatamodel.Product) error
	Update(ctx context.Context, p *productDatamodel.Product) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*Product, error) {
	rows, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return nil, err
	}

	products := make([]*Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, FromDataModel(row))
	}
	s.logger.Debug("retrieved products", "count", len(products), "active_only", activeOnly)
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get product", "error", err, "product_id", id)
		return nil, err
	}
	if row == nil {
		return nil, errors.ErrProductNotFound
	}
	return FromDataModel(row), nil
}

// GetByIDs returns the products keyed by id. Missing ids are absent from the map.
func (s *Service) GetByIDs(ctx context.Context, ids []int64) (map[int64]*Product, error) {
	rows, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to get products", "error", err, "count", len(ids))
		return nil, err
	}

	products := make(map[int64]*Product, len(rows))
	for _, row := range rows {
		products[row.ID] = FromDataModel(row)
	}
	return products, nil
}

func (s *Service) Create(ctx context.Context, req ProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("product validation failed", "error", err, "sku", req.SKU)
		return nil, err
	}

	p := &Product{IsActive: true}
	req.apply(p)

	row := ToDataModel(p)
	if err := s.repo.Create(ctx, row); err != nil {
		if stderrors.Is(err, errors.ErrSKUTaken) {
			return nil, errors.ErrSKUTaken
		}
		s.logger.Error("failed to create product", "error", err, "sku", p.SKU)
		return nil, errors.NewInternalError("failed to create product", err)
	}

	s.logger.Info("product created", "product_id", row.ID, "sku", row.SKU)
	return FromDataModel(row), nil
}

func (s *Service) Update(ctx context.Context, id int64, req ProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("product validation failed", "error", err, "product_id", id)
		return nil, err
	}

	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(p)

	row := ToDataModel(p)
	if err := s.repo.Update(ctx, row); err != nil {
		if stderrors.Is(err, errors.ErrSKUTaken) {
			return nil, errors.ErrSKUTaken
		}
		s.logger.Error("failed to update product", "error", err, "product_id", id)
		return nil, errors.NewInternalError("failed to update product", err)
	}

	s.logger.Info("product updated", "product_id", id)
	return FromDataModel(row), nil
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*Product, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		s.logger.Error("failed to toggle product", "error", err, "product_id", id)
		return nil, err
	}

	p.IsActive = active
	s.logger.Info("product toggled", "product_id", id, "is_active", active)
	return p, nil
}
