package product

import (
	"context"
	"net/http"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, activeOnly bool) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, req ProductRequest) (*Product, error)
	Update(ctx context.Context, id int64, req ProductRequest) (*Product, error)
	SetActive(ctx context.Context, id int64, active bool) (*Product, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetProducts lists the storefront catalog: active products only.
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.List(r.Context(), true)
	if err != nil {
		h.Logger.Error("GetProducts: failed to get products", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}

	p, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetProduct: service error", "error", err, "product_id", id)
		h.HandleServiceError(w, err)
		return
	}
	if !p.IsActive {
		h.HandleError(w, errors.ErrProductNotFound)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

// ListAllProducts is the admin view including inactive products.
func (h *Handler) ListAllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.List(r.Context(), false)
	if err != nil {
		h.Logger.Error("ListAllProducts: failed to get products", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("CreateProduct: service error", "error", err, "sku", req.SKU)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateProduct: product created", "product_id", p.ID, "sku", p.SKU)
	h.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		h.Logger.Error("UpdateProduct: service error", "error", err, "product_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) SetProductActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.Service.SetActive(r.Context(), id, req.IsActive)
	if err != nil {
		h.Logger.Error("SetProductActive: service error", "error", err, "product_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}
