package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	paymentDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/payment"
	"github.com/frahmantamala/petshop-commerce/internal/core/events"
	"github.com/frahmantamala/petshop-commerce/internal/core/metrics"
	"github.com/frahmantamala/petshop-commerce/internal/order"
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *paymentDatamodel.Payment) error
	ListByOrderID(ctx context.Context, orderID int64) ([]*paymentDatamodel.Payment, error)
}

// Orders is the slice of the order service the callback drives.
type Orders interface {
	Get(ctx context.Context, id int64) (*order.Detail, error)
	GetByNumber(ctx context.Context, orderNumber string) (*order.Detail, error)
	MarkPaid(ctx context.Context, orderNumber, paymentMethod string) (*order.Detail, bool, error)
	MarkPaymentFailed(ctx context.Context, orderNumber, paymentMethod string) (*order.Detail, bool, error)
}

type Service struct {
	repo    RepositoryAPI
	orders  Orders
	bus     events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, orders Orders, bus events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		orders:  orders,
		bus:     bus,
		metrics: m,
		logger:  logger,
	}
}

// HandleCallback records the gateway callback and moves the order accordingly.
// Replaying a callback is safe: the order only changes on the first delivery.
func (s *Service) HandleCallback(ctx context.Context, req CallbackRequest, raw json.RawMessage) (*CallbackResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := MapExternalStatus(req.Status)
	s.metrics.PaymentCallback(status)

	current, err := s.orders.GetByNumber(ctx, req.OrderNumber)
	if err != nil {
		s.logger.Warn("payment callback for unknown order", "order_number", req.OrderNumber, "error", err)
		return nil, err
	}

	record := &paymentDatamodel.Payment{
		OrderID:          current.ID,
		OrderNumber:      current.OrderNumber,
		GatewayPaymentID: strings.TrimSpace(req.GatewayPaymentID),
		Status:           status,
		ExternalStatus:   req.Status,
		PaymentMethod:    optional(req.PaymentMethod),
		FailureReason:    optional(req.FailureReason),
		GatewayResponse:  raw,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to record payment callback", "error", err, "order_number", req.OrderNumber)
		return nil, err
	}

	var (
		updated = current
		changed bool
	)
	switch status {
	case StatusPaid:
		updated, changed, err = s.orders.MarkPaid(ctx, req.OrderNumber, req.PaymentMethod)
		if err == nil && changed {
			s.publish(ctx, events.NewPaymentCompletedEvent(updated.ID, updated.OrderNumber, req.PaymentMethod, req.GatewayPaymentID))
		}
	case StatusFailed:
		updated, changed, err = s.orders.MarkPaymentFailed(ctx, req.OrderNumber, req.PaymentMethod)
		if err == nil && changed {
			s.publish(ctx, events.NewPaymentFailedEvent(updated.ID, updated.OrderNumber, req.FailureReason))
		}
	}
	if err != nil {
		s.logger.Error("failed to apply payment callback", "error", err, "order_number", req.OrderNumber, "status", status)
		return nil, err
	}

	s.logger.Info("payment callback processed",
		"order_number", req.OrderNumber,
		"external_status", req.Status,
		"status", status,
		"order_status", updated.Status,
		"changed", changed)

	message := "callback processed successfully"
	if !changed {
		message = "callback recorded; order unchanged"
	}
	return &CallbackResponse{
		Status:      "success",
		Message:     message,
		OrderNumber: updated.OrderNumber,
		OrderStatus: string(updated.Status),
		Changed:     changed,
	}, nil
}

func (s *Service) Payments(ctx context.Context, orderID int64) ([]*Payment, error) {
	if _, err := s.orders.Get(ctx, orderID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to list payments", "error", err, "order_id", orderID)
		return nil, err
	}

	payments := make([]*Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, FromDataModel(row))
	}
	return payments, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish payment event", "error", err, "event_type", event.EventType())
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
