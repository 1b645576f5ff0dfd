package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	"github.com/frahmantamala/petshop-commerce/internal/transport"
)

const maxCallbackBody = 64 << 10

type ServiceAPI interface {
	HandleCallback(ctx context.Context, req CallbackRequest, raw json.RawMessage) (*CallbackResponse, error)
	Payments(ctx context.Context, orderID int64) ([]*Payment, error)
}

type WebhookHandler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *WebhookHandler) HandlePaymentCallback(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		h.Logger.Error("HandlePaymentCallback: failed to read body", "error", err)
		h.HandleError(w, errors.NewValidationError("Invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	var req CallbackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.Logger.Error("HandlePaymentCallback: invalid request body", "error", err)
		h.HandleError(w, errors.NewValidationError("Invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	h.Logger.Info("HandlePaymentCallback: received callback",
		"order_number", req.OrderNumber,
		"status", req.Status,
		"payment_method", req.PaymentMethod,
		"gateway_payment_id", req.GatewayPaymentID)

	resp, err := h.Service.HandleCallback(r.Context(), req, json.RawMessage(body))
	if err != nil {
		h.Logger.Error("HandlePaymentCallback: failed to process callback", "error", err, "order_number", req.OrderNumber)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *WebhookHandler) ListOrderPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := h.URLParamInt64(w, r, "id")
	if !ok {
		return
	}

	payments, err := h.Service.Payments(r.Context(), id)
	if err != nil {
		h.Logger.Error("ListOrderPayments: service error", "error", err, "order_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, PaymentsResponse{Payments: payments})
}
