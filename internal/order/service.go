package order

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	orderDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/order"
	"github.com/frahmantamala/petshop-commerce/internal/core/events"
	"github.com/frahmantamala/petshop-commerce/internal/core/metrics"
	"github.com/frahmantamala/petshop-commerce/internal/core/money"
	"github.com/frahmantamala/petshop-commerce/internal/financials"
	"github.com/frahmantamala/petshop-commerce/internal/product"
	"github.com/frahmantamala/petshop-commerce/internal/voucher"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.NewConflictError("Insufficient stock for one or more items", errors.ErrCodeInsufficientStock)
	ErrStatusConflict    = errors.NewConflictError("Order status changed concurrently", errors.ErrCodeInvalidStatusTransition)
)

type RepositoryAPI interface {
	// Create persists the order with its items and takes the ordered
	// quantities out of stock in one transaction. It returns
	// ErrInsufficientStock when any product no longer has enough units.
	Create(ctx context.Context, o *orderDatamodel.Order) error
	GetByID(ctx context.Context, id int64) (*orderDatamodel.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*orderDatamodel.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*orderDatamodel.Order, error)
	// Transition moves the order from one status to another, applying changes
	// alongside. It reports false when the order was no longer in from.
	// restock returns the order's items to stock in the same transaction.
	Transition(ctx context.Context, id int64, from, to string, changes map[string]interface{}, restock bool) (bool, error)
}

type Catalog interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*product.Product, error)
}

type Vouchers interface {
	Resolve(ctx context.Context, code string, subtotal float64, email string) (voucher.Resolution, error)
	Redeem(ctx context.Context, voucherID int64, email string, orderID *int64) error
}

type Service struct {
	repo         RepositoryAPI
	catalog      Catalog
	vouchers     Vouchers
	aggregator   *financials.Aggregator
	bus          events.Publisher
	metrics      *metrics.Metrics
	logger       *slog.Logger
	numberPrefix string
	now          func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.bus = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithOrderNumberPrefix(prefix string) Option {
	return func(s *Service) { s.numberPrefix = prefix }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo RepositoryAPI, catalog Catalog, vouchers Vouchers, aggregator *financials.Aggregator, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		catalog:      catalog,
		vouchers:     vouchers,
		aggregator:   aggregator,
		logger:       logger,
		numberPrefix: "PS",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout prices the cart from the catalog, applies the voucher when it
// resolves, and persists the order as pending payment. A voucher that fails
// for any reason never blocks the order; it is simply not applied.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("checkout validation failed", "error", err, "email", req.CustomerEmail)
		return nil, err
	}

	items, subtotal, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	email := voucher.NormalizeEmail(req.CustomerEmail)
	outcome, applied := s.applyVoucher(ctx, req.VoucherCode, subtotal, email)

	discount := 0.0
	if applied != nil {
		discount = outcome.Discount
	}
	total := money.Float(money.Decimal(subtotal).Sub(money.Decimal(discount)))
	state := strings.TrimSpace(req.ShippingState)
	calc := s.aggregator.Calculator()
	if !calc.KnownState(state) {
		s.logger.Warn("shipping state not in delivery table; charging default fee",
			"state", state,
			"delivery_fee", calc.DefaultDeliveryFee())
	}
	delivery := calc.DeliveryFee(state)

	o := &Order{
		OrderNumber:     s.newOrderNumber(),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   email,
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		ShippingState:   state,
		Items:           items,
		Subtotal:        subtotal,
		DiscountAmount:  discount,
		TotalAmount:     &total,
		DeliveryFee:     &delivery,
		Status:          StatusPendingPayment,
	}
	if method := strings.TrimSpace(req.PaymentMethod); method != "" {
		o.PaymentMethod = &method
	}
	if applied != nil {
		o.VoucherID = &applied.ID
		o.VoucherCode = &applied.Code
	}

	row := ToDataModel(o)
	if err := s.repo.Create(ctx, row); err != nil {
		if stderrors.Is(err, ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		s.logger.Error("failed to persist order", "error", err, "email", email)
		return nil, errors.NewInternalError("failed to create order", err)
	}
	o = FromDataModel(row)

	if applied != nil {
		s.redeemVoucher(ctx, applied, email, o)
	}

	detail := s.detail(o)
	s.publish(ctx, events.NewOrderCreatedEvent(o.ID, o.OrderNumber, o.CustomerEmail, total, delivery, discount, deref(o.VoucherCode)))
	s.metrics.OrderCreated(string(detail.Financials.SenangPayFeeType), detail.Financials.SenangPayFee)

	s.logger.Info("order created",
		"order_id", o.ID,
		"order_number", o.OrderNumber,
		"subtotal", subtotal,
		"discount", discount,
		"total_amount", total,
		"delivery_fee", delivery)

	return &CheckoutResponse{Detail: detail, Voucher: outcome}, nil
}

func (s *Service) priceItems(ctx context.Context, reqItems []CheckoutItem) ([]Item, float64, error) {
	quantities := make(map[int64]int, len(reqItems))
	ids := make([]int64, 0, len(reqItems))
	for _, it := range reqItems {
		if _, seen := quantities[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		quantities[it.ProductID] += it.Quantity
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	products, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("failed to load products for checkout", "error", err)
		return nil, 0, err
	}

	items := make([]Item, 0, len(ids))
	subtotal := decimal.Zero
	for _, id := range ids {
		p, ok := products[id]
		if !ok {
			return nil, 0, errors.NewNotFoundError(fmt.Sprintf("Product %d not found", id), errors.ErrCodeProductNotFound)
		}
		qty := quantities[id]
		if !p.IsActive {
			return nil, 0, errors.NewValidationError(fmt.Sprintf("%s is no longer available", p.Name), errors.ErrCodeProductUnavailable)
		}
		if !p.CanFulfil(qty) {
			return nil, 0, errors.NewConflictError(fmt.Sprintf("Only %d of %s left in stock", p.Stock, p.Name), errors.ErrCodeInsufficientStock)
		}

		line := money.Decimal(p.Price).Mul(decimal.NewFromInt(int64(qty)))
		subtotal = subtotal.Add(line)
		items = append(items, Item{
			ProductID:   p.ID,
			ProductName: p.Name,
			SKU:         p.SKU,
			UnitPrice:   p.Price,
			Quantity:    qty,
			LineTotal:   money.Float(line),
		})
	}
	return items, money.Float(subtotal), nil
}

// applyVoucher returns the outcome to report and, when the discount applies,
// the voucher to redeem.
func (s *Service) applyVoucher(ctx context.Context, code string, subtotal float64, email string) (*VoucherOutcome, *voucher.Voucher) {
	code = voucher.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}

	outcome := &VoucherOutcome{Code: code}
	res, err := s.vouchers.Resolve(ctx, code, subtotal, email)
	if err != nil {
		s.logger.Warn("voucher lookup failed, continuing without discount", "error", err, "code", code)
		s.metrics.CheckoutVoucher("error")
		outcome.Reason = voucher.ReasonInvalidCode
		outcome.Message = voucher.ReasonInvalidCode.Message()
		return outcome, nil
	}
	if !res.Eligible {
		s.metrics.CheckoutVoucher(string(res.Reason))
		outcome.Reason = res.Reason
		outcome.Message = res.Message
		return outcome, nil
	}

	s.metrics.CheckoutVoucher("applied")
	outcome.Applied = true
	outcome.Discount = res.Discount
	return outcome, res.Voucher
}

func (s *Service) redeemVoucher(ctx context.Context, v *voucher.Voucher, email string, o *Order) {
	err := s.vouchers.Redeem(ctx, v.ID, email, &o.ID)
	if err == nil {
		return
	}
	if stderrors.Is(err, voucher.ErrUsageLimitReached) {
		s.logger.Warn("voucher limit reached between quote and redemption; order keeps its discount",
			"voucher_id", v.ID,
			"order_number", o.OrderNumber)
		s.metrics.CheckoutVoucher("redeem_race")
		return
	}
	s.logger.Error("failed to redeem voucher", "error", err, "voucher_id", v.ID, "order_number", o.OrderNumber)
}

func (s *Service) newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", s.numberPrefix, s.now().Format("20060102"), id)
}

func (s *Service) detail(o *Order) Detail {
	return Detail{Order: o, Financials: s.aggregator.Calculate(o.FinancialInput())}
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get order", "error", err, "order_id", id)
		return nil, err
	}
	if row == nil {
		return nil, errors.ErrOrderNotFound
	}
	d := s.detail(FromDataModel(row))
	return &d, nil
}

func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*Detail, error) {
	row, err := s.repo.GetByNumber(ctx, strings.TrimSpace(orderNumber))
	if err != nil {
		s.logger.Error("failed to get order", "error", err, "order_number", orderNumber)
		return nil, err
	}
	if row == nil {
		return nil, errors.ErrOrderNotFound
	}
	d := s.detail(FromDataModel(row))
	return &d, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Detail, ListFilter, error) {
	filter = filter.normalized()
	if filter.Status != "" {
		if _, ok := ParseStatus(filter.Status); !ok {
			return nil, filter, errors.NewValidationError("Invalid order status", errors.ErrCodeInvalidOrderStatus)
		}
	}
	filter.Email = voucher.NormalizeEmail(filter.Email)

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list orders", "error", err)
		return nil, filter, err
	}

	details := make([]Detail, 0, len(rows))
	for _, row := range rows {
		details = append(details, s.detail(FromDataModel(row)))
	}
	return details, filter, nil
}

// UpdateStatus is the back-office status change. Moving to cancelled puts the
// items back in stock.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*Detail, error) {
	next, ok := ParseStatus(status)
	if !ok {
		return nil, errors.NewValidationError("Invalid order status", errors.ErrCodeInvalidOrderStatus)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if next == StatusPaid && current.PaidAt == nil {
		changes["paid_at"] = s.now().UTC()
	}
	if err := s.transition(ctx, current.Order, next, changes); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// MarkPaid settles the order from a gateway callback. It reports false without
// error when the order was already settled.
func (s *Service) MarkPaid(ctx context.Context, orderNumber, paymentMethod string) (*Detail, bool, error) {
	current, err := s.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, false, err
	}
	if current.Status.IsSettled() {
		s.logger.Info("order already settled, ignoring paid callback", "order_number", orderNumber, "status", current.Status)
		return current, false, nil
	}

	changes := map[string]interface{}{"paid_at": s.now().UTC()}
	if method := strings.TrimSpace(paymentMethod); method != "" {
		changes["payment_method"] = method
	}
	if err := s.transition(ctx, current.Order, StatusPaid, changes); err != nil {
		if stderrors.Is(err, ErrStatusConflict) {
			return s.settledElsewhere(ctx, current.ID, orderNumber, err, Status.IsSettled)
		}
		return nil, false, err
	}

	updated, err := s.Get(ctx, current.ID)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// MarkPaymentFailed records a failed payment attempt. Settled orders are never
// downgraded; it reports false for those and for orders already marked failed.
func (s *Service) MarkPaymentFailed(ctx context.Context, orderNumber, paymentMethod string) (*Detail, bool, error) {
	current, err := s.GetByNumber(ctx, orderNumber)
	if err != nil {
		return nil, false, err
	}
	if current.Status != StatusPendingPayment {
		s.logger.Info("ignoring failed payment callback", "order_number", orderNumber, "status", current.Status)
		return current, false, nil
	}

	changes := map[string]interface{}{}
	if method := strings.TrimSpace(paymentMethod); method != "" {
		changes["payment_method"] = method
	}
	if err := s.transition(ctx, current.Order, StatusPaymentFailed, changes); err != nil {
		if stderrors.Is(err, ErrStatusConflict) {
			return s.settledElsewhere(ctx, current.ID, orderNumber, err, func(st Status) bool {
				return st != StatusPendingPayment
			})
		}
		return nil, false, err
	}

	updated, err := s.Get(ctx, current.ID)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// settledElsewhere handles a callback that lost the conditional update to a
// concurrent one. When the order has since reached a state the callback would
// not change, it is reported as unchanged instead of a conflict.
func (s *Service) settledElsewhere(ctx context.Context, id int64, orderNumber string, conflict error, done func(Status) bool) (*Detail, bool, error) {
	latest, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if !done(latest.Status) {
		return nil, false, conflict
	}
	s.logger.Info("order settled by a concurrent callback", "order_number", orderNumber, "status", latest.Status)
	return latest, false, nil
}

func (s *Service) transition(ctx context.Context, o *Order, next Status, changes map[string]interface{}) error {
	if !o.Status.CanTransitionTo(next) {
		s.logger.Warn("rejected order status transition", "order_id", o.ID, "from", o.Status, "to", next)
		return errors.NewConflictError(
			fmt.Sprintf("Cannot change order status from %s to %s", o.Status, next),
			errors.ErrCodeInvalidStatusTransition)
	}

	ok, err := s.repo.Transition(ctx, o.ID, string(o.Status), string(next), changes, next == StatusCancelled)
	if err != nil {
		s.logger.Error("failed to update order status", "error", err, "order_id", o.ID)
		return err
	}
	if !ok {
		return ErrStatusConflict
	}

	s.publish(ctx, events.NewOrderStatusChangedEvent(o.ID, o.OrderNumber, string(o.Status), string(next)))
	s.logger.Info("order status changed", "order_id", o.ID, "from", o.Status, "to", next)
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
