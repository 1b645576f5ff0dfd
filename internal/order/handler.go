package order

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/petshop-commerce/internal/transport"
)

type ServiceAPI interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error)
	Get(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, filter ListFilter) ([]Detail, ListFilter, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*Detail, error)
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

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Service.Checkout(r.Context(), req)
	if err != nil {
		h.Logger.Error("Checkout: service error", "error", err, "email", req.CustomerEmail)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("Checkout: order created",
		"order_number", resp.OrderNumber,
		"order_total", resp.Financials.OrderTotal)
	h.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status: q.Get("status"),
		Email:  q.Get("email"),
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filter.Limit = l
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	orders, applied, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.Logger.Error("ListOrders: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, OrdersResponse{
		Orders: orders,
		Limit:  applied.Limit,
		Offset: applied.Offset,
	})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetOrder: service error", "error", err, "order_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	detail, err := h.Service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.Logger.Error("UpdateOrderStatus: service error", "error", err, "order_id", id, "status", req.Status)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("UpdateOrderStatus: status updated", "order_id", id, "status", detail.Status)
	h.WriteJSON(w, http.StatusOK, detail)
}
