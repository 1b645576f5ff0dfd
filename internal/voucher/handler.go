package voucher

import (
	"context"
	"net/http"

	"github.com/frahmantamala/petshop-commerce/internal/transport"
)

type ServiceAPI interface {
	Resolve(ctx context.Context, code string, subtotal float64, email string) (Resolution, error)
	Create(ctx context.Context, req CreateVoucherRequest) (*Voucher, error)
	List(ctx context.Context) ([]*Voucher, error)
	GetByID(ctx context.Context, id int64) (*Voucher, error)
	SetActive(ctx context.Context, id int64, active bool) (*Voucher, error)
	Usages(ctx context.Context, voucherID int64) ([]*Usage, error)
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

// ValidateVoucher answers the storefront's "apply code" call. Rejections are
// 200 responses carrying the reason so the UI can show the message.
func (h *Handler) ValidateVoucher(w http.ResponseWriter, r *http.Request) {
	var req ValidateVoucherRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		h.Logger.Error("ValidateVoucher: validation failed", "error", err)
		h.HandleError(w, err)
		return
	}

	res, err := h.Service.Resolve(r.Context(), req.Code, req.Subtotal, req.Email)
	if err != nil {
		h.Logger.Error("ValidateVoucher: service error", "error", err, "code", req.Code)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ValidateVoucherResponse{
		Code:     NormalizeCode(req.Code),
		Valid:    res.Eligible,
		Discount: res.Discount,
		Reason:   res.Reason,
		Message:  res.Message,
	})
}

func (h *Handler) CreateVoucher(w http.ResponseWriter, r *http.Request) {
	var req CreateVoucherRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	v, err := h.Service.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("CreateVoucher: service error", "error", err, "code", req.Code)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateVoucher: voucher created", "voucher_id", v.ID, "code", v.Code)
	h.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	vouchers, err := h.Service.List(r.Context())
	if err != nil {
		h.Logger.Error("ListVouchers: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, VouchersResponse{Vouchers: vouchers})
}

func (h *Handler) GetVoucher(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}

	v, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.Logger.Error("GetVoucher: service error", "error", err, "voucher_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) SetVoucherActive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if !h.DecodeJSON(w, r, &req) {
		return
	}

	v, err := h.Service.SetActive(r.Context(), id, req.IsActive)
	if err != nil {
		h.Logger.Error("SetVoucherActive: service error", "error", err, "voucher_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, v)
}

func (h *Handler) ListUsages(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}

	usages, err := h.Service.Usages(r.Context(), id)
	if err != nil {
		h.Logger.Error("ListUsages: service error", "error", err, "voucher_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, UsagesResponse{Usages: usages})
}
