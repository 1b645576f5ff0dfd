package voucher

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/petshop-commerce/internal"
	voucherDatamodel "github.com/frahmantamala/petshop-commerce/internal/core/datamodel/voucher"
	"github.com/frahmantamala/petshop-commerce/internal/core/events"
	"github.com/frahmantamala/petshop-commerce/internal/core/metrics"
)

// ErrUsageLimitReached is returned by Redeem when the conditional increment
// matched no row.
var ErrUsageLimitReached = errors.NewConflictError("Voucher usage limit reached", errors.ErrCodeVoucherLimitReached)

type RepositoryAPI interface {
	// GetByCode matches case-insensitively and returns nil, nil when no voucher exists.
	GetByCode(ctx context.Context, code string) (*voucherDatamodel.Voucher, error)
	GetByID(ctx context.Context, id int64) (*voucherDatamodel.Voucher, error)
	List(ctx context.Context) ([]*voucherDatamodel.Voucher, error)
	Create(ctx context.Context, v *voucherDatamodel.Voucher) error
	SetActive(ctx context.Context, id int64, active bool) error
	HasUsage(ctx context.Context, voucherID int64, email string) (bool, error)
	// Redeem increments times_used only while under the limit and records the
	// usage row in the same transaction. It reports whether the increment applied.
	Redeem(ctx context.Context, voucherID int64, email string, orderID *int64) (bool, error)
	ListUsages(ctx context.Context, voucherID int64) ([]*voucherDatamodel.Usage, error)
}

// Cache holds vouchers by normalized code.
type Cache interface {
	Get(ctx context.Context, key string) (*Voucher, error)
	Set(ctx context.Context, key string, v *Voucher) error
	Delete(ctx context.Context, key string) error
}

type Service struct {
	repo    RepositoryAPI
	cache   Cache
	bus     events.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*Service)

func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.bus = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo RepositoryAPI, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve looks the code up and runs the eligibility chain. A rejected voucher
// is not an error; the error return is reserved for storage failures.
func (s *Service) Resolve(ctx context.Context, code string, subtotal float64, email string) (Resolution, error) {
	code = NormalizeCode(code)
	if code == "" {
		s.metrics.VoucherValidated(string(ReasonInvalidCode))
		return reject(nil, ReasonInvalidCode), nil
	}

	v, err := s.lookup(ctx, code)
	if err != nil {
		s.logger.Error("failed to look up voucher", "error", err, "code", code)
		return Resolution{}, err
	}

	email = NormalizeEmail(email)
	res, err := Evaluate(v, subtotal, func() (bool, error) {
		if email == "" {
			return false, nil
		}
		return s.repo.HasUsage(ctx, v.ID, email)
	}, s.now())
	if err != nil {
		s.logger.Error("failed to evaluate voucher", "error", err, "code", code)
		return Resolution{}, err
	}
	if res.Eligible && v.OncePerUser && email == "" {
		res = reject(v, ReasonEmailRequired)
	}

	s.metrics.VoucherValidated(string(res.Reason))
	if !res.Eligible {
		s.logger.Info("voucher rejected", "code", code, "reason", res.Reason, "subtotal", subtotal)
	}
	return res, nil
}

func (s *Service) lookup(ctx context.Context, code string) (*Voucher, error) {
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, code); err == nil && v != nil {
			return v, nil
		}
	}

	data, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	v := FromDataModel(data)
	if s.cache != nil {
		if err := s.cache.Set(ctx, code, v); err != nil {
			s.logger.Warn("failed to cache voucher", "error", err, "code", code)
		}
	}
	return v, nil
}

// Redeem records one use of the voucher by email. Repeated calls for the same
// email leave a single usage row.
func (s *Service) Redeem(ctx context.Context, voucherID int64, email string, orderID *int64) error {
	email = NormalizeEmail(email)

	applied, err := s.repo.Redeem(ctx, voucherID, email, orderID)
	if err != nil {
		s.logger.Error("failed to redeem voucher", "error", err, "voucher_id", voucherID)
		return err
	}
	if !applied {
		s.logger.Warn("voucher usage limit reached during redemption", "voucher_id", voucherID, "email", email)
		return ErrUsageLimitReached
	}

	code := s.invalidateByID(ctx, voucherID)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.NewVoucherRedeemedEvent(voucherID, code, email, orderID)); err != nil {
			s.logger.Warn("failed to publish voucher redeemed event", "error", err, "voucher_id", voucherID)
		}
	}

	s.logger.Info("voucher redeemed", "voucher_id", voucherID, "email", email)
	return nil
}

func (s *Service) invalidateByID(ctx context.Context, id int64) string {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil || data == nil {
		return ""
	}
	s.invalidate(ctx, data.Code)
	return data.Code
}

func (s *Service) invalidate(ctx context.Context, code string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, NormalizeCode(code)); err != nil {
		s.logger.Warn("failed to invalidate voucher cache", "error", err, "code", code)
	}
}

func (s *Service) Create(ctx context.Context, req CreateVoucherRequest) (*Voucher, error) {
	if err := req.Validate(); err != nil {
		s.logger.Error("voucher validation failed", "error", err, "code", req.Code)
		return nil, err
	}

	data := ToDataModel(req.ToVoucher())
	if err := s.repo.Create(ctx, data); err != nil {
		if stderrors.Is(err, errors.ErrVoucherCodeTaken) {
			return nil, errors.ErrVoucherCodeTaken
		}
		s.logger.Error("failed to create voucher", "error", err, "code", data.Code)
		return nil, errors.NewInternalError("failed to create voucher", err)
	}
	s.invalidate(ctx, data.Code)

	s.logger.Info("voucher created", "voucher_id", data.ID, "code", data.Code)
	return FromDataModel(data), nil
}

func (s *Service) List(ctx context.Context) ([]*Voucher, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list vouchers", "error", err)
		return nil, err
	}

	vouchers := make([]*Voucher, 0, len(rows))
	for _, row := range rows {
		vouchers = append(vouchers, FromDataModel(row))
	}
	return vouchers, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Voucher, error) {
	data, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get voucher", "error", err, "voucher_id", id)
		return nil, err
	}
	if data == nil {
		return nil, errors.ErrVoucherNotFound
	}
	return FromDataModel(data), nil
}

// SetActive toggles a voucher on or off. Vouchers are never hard-deleted so
// usage history stays intact.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*Voucher, error) {
	v, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		s.logger.Error("failed to toggle voucher", "error", err, "voucher_id", id)
		return nil, err
	}
	s.invalidate(ctx, v.Code)

	v.IsActive = active
	s.logger.Info("voucher toggled", "voucher_id", id, "is_active", active)
	return v, nil
}

func (s *Service) Usages(ctx context.Context, voucherID int64) ([]*Usage, error) {
	if _, err := s.GetByID(ctx, voucherID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListUsages(ctx, voucherID)
	if err != nil {
		s.logger.Error("failed to list voucher usages", "error", err, "voucher_id", voucherID)
		return nil, err
	}

	usages := make([]*Usage, 0, len(rows))
	for _, row := range rows {
		usages = append(usages, UsageFromDataModel(row))
	}
	return usages, nil
}
